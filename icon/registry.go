package icon

// Icon identifies a symbol.
type Icon int

const (
	Fail Icon = iota + 1
	Success
	Question
	Progress
	Play
	Stop
	Repeat
	Advance
	Known
	Unknown
	Dataset
	Video
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "X",
		kaomoji: "(×﹏×)",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "OK",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Question: {
		emoji:   "🤨",
		nerd:    "",
		plain:   "?",
		kaomoji: "(・_・ヾ",
		squares: "🟦",
	},
	Progress: {
		emoji:   "👾",
		nerd:    "",
		plain:   "~",
		kaomoji: "┌( ಠ_ಠ)┘",
		squares: "🟪",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "ヽ(•‿•)ノ",
		squares: "🟩",
	},
	Stop: {
		emoji:   "⏹️",
		nerd:    "",
		plain:   "#",
		kaomoji: "(－_－)",
		squares: "⬛",
	},
	Repeat: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "@",
		kaomoji: "(↻_↻)",
		squares: "🟨",
	},
	Advance: {
		emoji:   "⏭️",
		nerd:    "",
		plain:   ">>",
		kaomoji: "(≧▽≦)>>",
		squares: "🟧",
	},
	Known: {
		emoji:   "✅",
		nerd:    "",
		plain:   "+",
		kaomoji: "(๑•̀ㅂ•́)و",
		squares: "🟩",
	},
	Unknown: {
		emoji:   "📝",
		nerd:    "",
		plain:   "-",
		kaomoji: "(._.)",
		squares: "⬜",
	},
	Dataset: {
		emoji:   "📚",
		nerd:    "",
		plain:   "*",
		kaomoji: "φ(．．)",
		squares: "🟫",
	},
	Video: {
		emoji:   "🎬",
		nerd:    "",
		plain:   "V",
		kaomoji: "(⌐■_■)",
		squares: "🟦",
	},
}
