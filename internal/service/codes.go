package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const codeTimeLayout = "060102150405"

// generateCode 生成 PREFIX-yymmddHHMMSS-XXXXXX 形式的编号
func generateCode(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format(codeTimeLayout), suffix)
}
