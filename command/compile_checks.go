package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[DispatchEventMessage] = (*DispatchEventCommand)(nil)
	_ gocmd.Commander[SendTestMessage]      = (*SendTestCommand)(nil)
	_ gocmd.Commander[SweepRetriesMessage]  = (*SweepRetriesCommand)(nil)
	_ gocmd.Commander[RedeliverMessage]     = (*RedeliverCommand)(nil)
)
