package slideshow

// ListRequest carries the slideshow parameters sent by the client.
// Sessions are keyed on exact equality of these values; any change
// resets the session's cycle state.
type ListRequest struct {
	StartFolder     string   `json:"startFolder"`
	Randomize       bool     `json:"randomize"`
	ShuffleAll      bool     `json:"shuffleAll"`
	SelectedFolders []string `json:"selectedFolders"`
}

// Equal reports whether two requests are identical, including the order
// of SelectedFolders.
func (r ListRequest) Equal(o ListRequest) bool {
	if r.StartFolder != o.StartFolder ||
		r.Randomize != o.Randomize ||
		r.ShuffleAll != o.ShuffleAll ||
		len(r.SelectedFolders) != len(o.SelectedFolders) {
		return false
	}
	for i := range r.SelectedFolders {
		if r.SelectedFolders[i] != o.SelectedFolders[i] {
			return false
		}
	}
	return true
}
