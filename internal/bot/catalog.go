package bot

// Model is an entry in the selection keyboard.
type Model struct {
	ID    string
	Label string
}

// Catalog lists the models offered to users, in menu order. Preferences are
// not restricted to it.
var Catalog = []Model{
	{"gpt-4o", "🚀 GPT-4o (Most Capable)"},
	{"gpt-4o-mini", "⚡ GPT-4o Mini (Fast & Efficient)"},
	{"gpt-4-turbo", "🎯 GPT-4 Turbo"},
	{"gpt-4", "🧠 GPT-4"},
	{"gpt-3.5-turbo", "💨 GPT-3.5 Turbo"},
	{"o1-preview", "🔬 O1 Preview (Reasoning)"},
	{"o1-mini", "🎓 O1 Mini (Fast Reasoning)"},
}

// ModelLabel returns the display label for id, or id itself if unlisted.
func ModelLabel(id string) string {
	for _, m := range Catalog {
		if m.ID == id {
			return m.Label
		}
	}
	return id
}
