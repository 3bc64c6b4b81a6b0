package utils

import (
	json "github.com/bytedance/sonic"
)

func JsonIndent(obj any) string {
	jsonStr, _ := json.MarshalIndent(obj, "", "  ")
	return string(jsonStr)
}
