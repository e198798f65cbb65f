// Package avatar defines the transport-agnostic contracts that let
// internal/migration and the registries treat terminal and web
// connections/applications uniformly, without importing either concrete
// transport package (avoiding the cycle a literal "weak back-reference"
// would otherwise require, per spec.md §9).
package avatar

// Kind distinguishes the two transports a user's Application can be
// driven by.
type Kind int

const (
	TerminalKind Kind = iota
	WebKind
)

func (k Kind) String() string {
	if k == WebKind {
		return "web"
	}
	return "terminal"
}

// Application is the user-scoped state driver that outlives any single
// connection (spec.md glossary). Both the terminal and web application
// adapters implement it.
type Application interface {
	UserID() string
	Kind() Kind

	// ProduceCompatible implements spec.md §4.7: if the receiver already
	// provides targetKind it returns itself; otherwise it constructs a
	// peer application of targetKind bound to the same user, session,
	// and game state, transferring the lobby machine's token.
	ProduceCompatible(targetKind Kind) (Application, error)

	// RefreshUI delivers a synthetic next-phase signal so a newly
	// (re)attached UI redraws immediately.
	RefreshUI()

	// Shutdown tears down the application (explicit logoff or session
	// end) — idempotent.
	Shutdown()
}

// Avatar is the per-connection handle funneling input into an
// Application and output back to the client. It satisfies
// internal/registry.Avatar structurally (Replaced()).
type Avatar interface {
	UserID() string
	Kind() Kind
	Replaced()
	Disconnect()
}
