package encrypt

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

// 不參與簽章的欄位
var unsignedParams = map[string]bool{
	"file":          true,
	"api_key":       true,
	"resource_type": true,
	"cloud_name":    true,
	"signature":     true,
}

// StringToSign 依 key 排序組成 k=v&k=v，空值與不簽章欄位略過
func StringToSign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" || unsignedParams[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, "&")
}

// SignParams 上傳請求簽章: sha1(StringToSign(params) + secret) hex
func SignParams(params map[string]string, secret string) string {
	sum := sha1.Sum([]byte(StringToSign(params) + secret))
	return hex.EncodeToString(sum[:])
}
