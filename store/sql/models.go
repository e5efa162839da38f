package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type deliveryRecord struct {
	bun.BaseModel `bun:"table:webhook_deliveries,alias:wd"`

	ID           string     `bun:"id,pk"`
	EventType    string     `bun:"event_type,notnull"`
	Payload      []byte     `bun:"payload,notnull"`
	Status       string     `bun:"status,notnull"`
	ResponseCode int        `bun:"response_code"`
	ResponseBody string     `bun:"response_body"`
	Attempts     int        `bun:"attempts,notnull"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	SentAt       *time.Time `bun:"sent_at,nullzero"`
}
