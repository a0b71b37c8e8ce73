package engine

// TruncateStr truncates a string to maxLen characters, appending "..." when
// it had to cut.
func TruncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
