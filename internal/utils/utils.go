package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const promocodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GeneratePromocode returns "REF_" followed by eight random alphanumerics.
func GeneratePromocode() (string, error) {
	var sb strings.Builder
	sb.WriteString("REF_")
	max := big.NewInt(int64(len(promocodeAlphabet)))
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(promocodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NewReference builds a reference number such as WDR-3F2A9C1B7D04.
func NewReference(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(id[:12])
}

// MembershipReference mirrors the MEM-<unix>-<user> format.
func MembershipReference(now time.Time, userID uint) string {
	return fmt.Sprintf("MEM-%d-%d", now.Unix(), userID)
}
