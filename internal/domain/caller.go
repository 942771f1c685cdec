package domain

// AnonymousPrincipal is the textual form of the unauthenticated identity.
const AnonymousPrincipal = "2vxsx-fae"

// Caller is the identity handed over by the transport for each request.
type Caller interface {
	Principal() string
	IsAnonymous() bool
}

// Principal is an opaque caller identifier. The empty principal is
// anonymous as well.
type Principal string

func (p Principal) Principal() string {
	return string(p)
}

func (p Principal) IsAnonymous() bool {
	return p == "" || p == AnonymousPrincipal
}
