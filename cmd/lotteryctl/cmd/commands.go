package cmd

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/internal/utils"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current round",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient().Status(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, status)
	},
}

var enterCmd = &cobra.Command{
	Use:   "enter",
	Short: "Enter the current round",
	RunE: func(cmd *cobra.Command, args []string) error {
		player, _ := cmd.Flags().GetString("player")
		payment, err := paymentFromFlags(cmd)
		if err != nil {
			return err
		}
		resp, err := newClient().Enter(cmd.Context(), player, payment)
		if err != nil {
			return err
		}
		return printJSON(cmd, resp)
	},
}

var upkeepCmd = &cobra.Command{
	Use:   "upkeep",
	Short: "Check upkeep, or perform it with --perform",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		perform, _ := cmd.Flags().GetBool("perform")
		if !perform {
			check, err := c.CheckUpkeep(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, check)
		}
		requestID, err := c.PerformUpkeep(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]string{"requestId": requestID})
	},
}

var fulfillCmd = &cobra.Command{
	Use:   "fulfill REQUEST_ID WORD...",
	Short: "Deliver random words for a request (oracle token)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := utils.ParseRequestID(args[0]); err != nil {
			return err
		}
		for _, w := range args[1:] {
			if _, err := utils.ParseWord(w); err != nil {
				return err
			}
		}
		resp, err := newClient().Fulfill(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}
		return printJSON(cmd, resp)
	},
}

var roundsCmd = &cobra.Command{
	Use:   "rounds",
	Short: "List completed rounds, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		page, err := newClient().Rounds(cmd.Context(), limit, offset)
		if err != nil {
			return err
		}
		return printJSON(cmd, page)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login PASSWORD",
	Short: "Get an operator token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().Login(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, resp)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token SUBJECT ROLE",
	Short: "Issue a player, oracle or operator token (operator token)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().IssueToken(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, resp)
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password PASSWORD",
	Short: "Print the bcrypt hash for RAFFLE_AUTH_OPERATOR_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := services.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	enterCmd.Flags().String("player", "", "player address (operator or anonymous entries)")
	enterCmd.Flags().String("wei", "", "payment in wei")
	enterCmd.Flags().String("ether", "", "payment in ether, e.g. 0.01")

	upkeepCmd.Flags().Bool("perform", false, "perform upkeep")

	roundsCmd.Flags().Int("limit", 20, "page size")
	roundsCmd.Flags().Int("offset", 0, "rounds to skip")
}

func paymentFromFlags(cmd *cobra.Command) (*big.Int, error) {
	wei, _ := cmd.Flags().GetString("wei")
	ether, _ := cmd.Flags().GetString("ether")
	switch {
	case wei != "" && ether != "":
		return nil, errors.New("use only one of --wei and --ether")
	case wei != "":
		return utils.ParseWei(wei)
	case ether != "":
		return utils.ParseEther(ether)
	default:
		return nil, errors.New("--wei or --ether is required")
	}
}
