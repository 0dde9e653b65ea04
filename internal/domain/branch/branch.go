package branch

// Branch is an organizational location a user may belong to. Branches are
// provisioned outside this service; we only read them.
type Branch struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
