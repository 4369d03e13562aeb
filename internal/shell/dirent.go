package shell

// direntNameOffset is where the NUL-terminated filename begins within a
// linux_dirent64 record: 8 bytes inode + 8 bytes offset + 2 bytes reclen +
// 1 byte type = 19 (spec.md §4.8).
const direntNameOffset = 19

// direntHeaderSize is the minimum size of a linux_dirent64 record before
// its variable-length name.
const direntHeaderSize = 19

// ParseDirents decodes a buffer of linux_dirent64 records as returned by
// getdents64(2) and returns the entry names found, honoring each record's
// declared reclen. Malformed trailing records are stopped at, not panicked
// on.
func ParseDirents(buf []byte) []string {
	var names []string
	pos := 0
	for pos < len(buf) {
		remaining := len(buf) - pos
		if remaining < direntHeaderSize {
			break
		}

		reclen := int(buf[pos+16]) | int(buf[pos+17])<<8
		if reclen <= 0 || pos+reclen > len(buf) {
			break
		}

		nameStart := pos + direntNameOffset
		recEnd := pos + reclen
		if nameStart >= len(buf) || nameStart >= recEnd {
			pos += reclen
			continue
		}

		nameEnd := nameStart
		max := recEnd
		if max > len(buf) {
			max = len(buf)
		}
		for nameEnd < max && buf[nameEnd] != 0 {
			nameEnd++
		}

		names = append(names, string(buf[nameStart:nameEnd]))
		pos += reclen
	}
	return names
}

// BubbleSort sorts names lexicographically by bytewise comparison in
// place. O(n^2) is acceptable for the ≤64 entries ls ever collects
// (spec.md §4.8); stability isn't required, only a consistent order.
func BubbleSort(names []string) {
	for i := 0; i < len(names); i++ {
		for j := 0; j < len(names)-i-1; j++ {
			if names[j+1] < names[j] {
				names[j], names[j+1] = names[j+1], names[j]
			}
		}
	}
}
