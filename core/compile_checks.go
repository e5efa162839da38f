package core

import "net/http"

var (
	_ DeliveryStore  = (*MemoryDeliveryStore)(nil)
	_ Scheduler      = (*MemoryScheduler)(nil)
	_ Signer         = HMACSigner{}
	_ HTTPDoer       = (*http.Client)(nil)
	_ ConfigProvider = (*CfgxConfigProvider)(nil)
)
