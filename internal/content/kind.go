// Package content models the reusable instruction items rulekit manages.
package content

// Kind represents a category of content item
type Kind string

const (
	KindRule     Kind = "rule"
	KindSkill    Kind = "skill"
	KindWorkflow Kind = "workflow"
)

// IsValid returns true if the kind is recognized
func (k Kind) IsValid() bool {
	switch k {
	case KindRule, KindSkill, KindWorkflow:
		return true
	default:
		return false
	}
}

// DirName returns the content-root subdirectory holding this kind.
func (k Kind) DirName() string {
	switch k {
	case KindRule:
		return "rules"
	case KindSkill:
		return "skills"
	case KindWorkflow:
		return "workflows"
	default:
		return ""
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// AllKinds returns all supported content kinds
func AllKinds() []Kind {
	return []Kind{KindRule, KindSkill, KindWorkflow}
}

// KindForDir returns the kind stored in the named subdirectory, if any.
func KindForDir(dir string) (Kind, bool) {
	for _, k := range AllKinds() {
		if k.DirName() == dir {
			return k, true
		}
	}
	return "", false
}
