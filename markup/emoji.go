package markup

// Emoji detection by code point range. Joiners and variation selectors are
// treated as part of an emoji run only when they follow one, so combined
// sequences (flags, skin tones, ZWJ families) stay in a single run.

type textRun struct {
	text  string
	emoji bool
}

func splitEmojiRuns(s string) []textRun {
	var (
		runs    []textRun
		current []rune
		emoji   bool
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		runs = append(runs, textRun{text: string(current), emoji: emoji})
		current = current[:0]
	}
	for _, r := range s {
		isE := isEmoji(r) || (emoji && len(current) > 0 && isEmojiJoiner(r))
		if len(current) > 0 && isE != emoji {
			flush()
		}
		emoji = isE
		current = append(current, r)
	}
	flush()
	return runs
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // misc symbols and pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport and map
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental symbols
		return true
	case r >= 0x1FA70 && r <= 0x1FAFF: // symbols and pictographs extended-A
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x2600 && r <= 0x26FF: // misc symbols
		return true
	case r >= 0x2700 && r <= 0x27BF: // dingbats
		return true
	case r == 0x2B50 || r == 0x2B55:
		return true
	default:
		return false
	}
}

func isEmojiJoiner(r rune) bool {
	switch r {
	case 0x200D: // zero width joiner
		return true
	case 0xFE0E, 0xFE0F: // variation selectors
		return true
	default:
		return r >= 0x1F3FB && r <= 0x1F3FF // skin tone modifiers
	}
}
