package client

// Decision is the route guard's verdict for a protected view.
type Decision int

const (
	// DecisionLoading renders a placeholder while the identity fetch
	// resolves.
	DecisionLoading Decision = iota
	// DecisionRedirect sends the visitor to the login root.
	DecisionRedirect
	// DecisionAllow renders the requested view.
	DecisionAllow
)

// GuardResult carries the verdict plus the navigation targets for a
// redirect.
type GuardResult struct {
	Decision Decision
	// RedirectTo is the login root, set only on DecisionRedirect.
	RedirectTo string
	// ReturnTo preserves the originally requested location so login can
	// send the visitor back.
	ReturnTo string
}

// Guard decides access to a protected view. It is a pure function of the
// session snapshot: loading wins, then a missing user redirects, otherwise
// the view renders.
func Guard(user *User, loading bool, requestedPath string) GuardResult {
	if loading {
		return GuardResult{Decision: DecisionLoading}
	}
	if user == nil {
		return GuardResult{
			Decision:   DecisionRedirect,
			RedirectTo: "/",
			ReturnTo:   requestedPath,
		}
	}
	return GuardResult{Decision: DecisionAllow}
}
