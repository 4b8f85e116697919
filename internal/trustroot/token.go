package trustroot

import (
	"net/url"
	"strings"

	"ownidp/pkg/domainerrors"
)

// Bytes left unescaped in token components. Deliberately excludes '_' so the
// "__" component separator can never occur inside an escaped component; that
// keeps the encoding injective over scheme/host/path/query.
const tokenSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789.~-"

// Token canonicalizes rawurl into a filesystem-legal storage key. The URL is
// decomposed into scheme, host, path, and query; fragment and user info are
// dropped. Two URLs differing in any kept component yield different tokens.
func Token(rawurl string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", domainerrors.Wrap(domainerrors.CodeBadRequest, "invalid trust root URL", err)
	}

	parts := []string{u.Scheme, u.Host, u.EscapedPath(), u.RawQuery}
	for i, p := range parts {
		parts[i] = escapeComponent(p)
	}
	return strings.Join(parts, "__"), nil
}

func escapeComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(tokenSafe, c) >= 0 {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0f])
		}
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"
