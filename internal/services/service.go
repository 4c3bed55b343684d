package services

import (
	"github.com/ArowuTest/raffle-backend/pkg/payout"
	"github.com/ArowuTest/raffle-backend/pkg/redispub"
	"github.com/ArowuTest/raffle-backend/pkg/vrf"
)

// Compile-time checks for the collaborator wiring in cmd/api
var (
	_ vrf.Consumer    = (*LotteryService)(nil)
	_ UpkeepRunner    = (*LotteryService)(nil)
	_ Dispatcher      = (*NotificationService)(nil)
	_ Publisher       = (*redispub.Publisher)(nil)
	_ payout.Rejecter = (*BlacklistService)(nil)
)
