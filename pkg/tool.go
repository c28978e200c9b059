package pkg

import "strings"

// MatchPath 判斷 path 是否符合任一 pattern，pattern 以 "/*" 結尾時比對前綴
func MatchPath(patterns []string, path string) bool {
	path = NormalizePath(path)
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

// NormalizePath 去掉結尾的 "/"，根路徑除外
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
