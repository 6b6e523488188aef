package domain

// DirectoryStats is the read model behind the admin stats endpoint. It is
// computed from whatsapp_groups on demand and never persisted.
type DirectoryStats struct {
	TotalGroups    int64            `json:"total_groups"`
	ApprovedGroups int64            `json:"approved_groups"`
	PendingGroups  int64            `json:"pending_groups"`
	TotalClicks    int64            `json:"total_clicks"`
	ByCategory     map[string]int64 `json:"by_category"`
}
