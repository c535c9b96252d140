package common

type Module string

const (
	ModuleStaking Module = "staking"
)

func (m Module) String() string {
	return string(m)
}
