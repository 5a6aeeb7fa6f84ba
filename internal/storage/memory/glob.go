package memory

// Match reports whether s matches the glob pattern using the rules of the
// KEYS command: '*' matches any run of bytes, '?' matches one byte,
// "[abc]", "[^abc]" and "[a-z]" match byte classes and '\' escapes the
// next byte. Matching is byte-exact.
func Match(pattern, s string) bool {
	if pattern == "*" {
		return true
	}

	px, sx := 0, 0
	// Restart point for the most recent '*'.
	starPx, starSx := -1, -1
	for px < len(pattern) || sx < len(s) {
		if px < len(pattern) {
			switch c := pattern[px]; c {
			case '*':
				starPx, starSx = px, sx+1
				px++
				continue
			case '?':
				if sx < len(s) {
					px++
					sx++
					continue
				}
			case '[':
				if sx < len(s) {
					ok, width := matchClass(pattern[px:], s[sx])
					if ok {
						px += width
						sx++
						continue
					}
				}
			case '\\':
				lit, width := c, 1
				if px+1 < len(pattern) {
					lit, width = pattern[px+1], 2
				}
				if sx < len(s) && s[sx] == lit {
					px += width
					sx++
					continue
				}
			default:
				if sx < len(s) && s[sx] == c {
					px++
					sx++
					continue
				}
			}
		}
		if starSx > 0 && starSx <= len(s) {
			px, sx = starPx, starSx
			continue
		}
		return false
	}
	return true
}

// matchClass matches c against the class at the start of p, which begins
// with '['. It returns the match result and the width of the class in p.
// An unterminated class extends to the end of the pattern.
func matchClass(p string, c byte) (bool, int) {
	i := 1
	negate := false
	if i < len(p) && p[i] == '^' {
		negate = true
		i++
	}
	matched := false
	for i < len(p) && p[i] != ']' {
		switch {
		case p[i] == '\\' && i+1 < len(p):
			if p[i+1] == c {
				matched = true
			}
			i += 2
		case i+2 < len(p) && p[i+1] == '-' && p[i+2] != ']':
			lo, hi := p[i], p[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				matched = true
			}
			i += 3
		default:
			if p[i] == c {
				matched = true
			}
			i++
		}
	}
	if i < len(p) {
		i++ // closing ']'
	}
	return matched != negate, i
}
