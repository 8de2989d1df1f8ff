package memory

// Match reports whether s matches the glob pattern the way KEYS and SCAN
// MATCH do: '*' any run, '?' one byte, '[...]' a class with optional '^'
// negation and 'a-z' ranges, '\' escapes the next byte. Unlike path.Match
// no byte is treated as a separator.
func Match(pattern, s string) bool {
	p, i := 0, 0
	// position to resume from after the last '*'
	star, mark := -1, 0
	for i < len(s) {
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				star, mark = p, i
				p++
				continue
			case '?':
				p++
				i++
				continue
			case '[':
				if end, ok := matchClass(pattern, p, s[i]); ok {
					p = end
					i++
					continue
				}
			case '\\':
				if p+1 < len(pattern) && pattern[p+1] == s[i] {
					p += 2
					i++
					continue
				}
			default:
				if pattern[p] == s[i] {
					p++
					i++
					continue
				}
			}
		}
		if star < 0 {
			return false
		}
		mark++
		p, i = star+1, mark
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// matchClass tests c against the class starting at pattern[p] == '['. It
// returns the index just past the closing ']' and whether c matched. An
// unterminated class matches nothing.
func matchClass(pattern string, p int, c byte) (int, bool) {
	p++
	negate := p < len(pattern) && pattern[p] == '^'
	if negate {
		p++
	}
	matched := false
	for p < len(pattern) && pattern[p] != ']' {
		lo := pattern[p]
		if lo == '\\' && p+1 < len(pattern) {
			p++
			lo = pattern[p]
		}
		hi := lo
		if p+2 < len(pattern) && pattern[p+1] == '-' && pattern[p+2] != ']' {
			hi = pattern[p+2]
			p += 2
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if c >= lo && c <= hi {
			matched = true
		}
		p++
	}
	if p >= len(pattern) {
		return p, false
	}
	return p + 1, matched != negate
}
