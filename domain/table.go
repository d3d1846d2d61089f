package domain

// Table is a mongo collection name
type Table string

const (
	TableDealOrderStatus Table = "deal_order_status"
	TableDealRewards     Table = "deal_rewards"
	TableDealEvents      Table = "deal_events"
	TableClaimEvents     Table = "claim_events"
)
