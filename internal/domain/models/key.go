package models

// KeyKind identifies the variant carried by a Key.
type KeyKind int

const (
	KeyCPF KeyKind = iota
	KeyEmail
	KeyPhone
	KeyRandom
)

func (k KeyKind) String() string {
	switch k {
	case KeyCPF:
		return "cpf"
	case KeyEmail:
		return "email"
	case KeyPhone:
		return "phone"
	case KeyRandom:
		return "random"
	default:
		return "unknown"
	}
}

// Key is an opaque label attached to an account at creation time. The
// engine never verifies or enforces uniqueness of a Key's Value; it is
// carried for the caller's own bookkeeping.
type Key struct {
	Kind  KeyKind `json:"kind"`
	Value string  `json:"value"`
}

func NewCPFKey(value string) Key    { return Key{Kind: KeyCPF, Value: value} }
func NewEmailKey(value string) Key  { return Key{Kind: KeyEmail, Value: value} }
func NewPhoneKey(value string) Key  { return Key{Kind: KeyPhone, Value: value} }
func NewRandomKey(value string) Key { return Key{Kind: KeyRandom, Value: value} }
