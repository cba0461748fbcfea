package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Well-known claim types carried by access tokens.
const (
	ClaimTypeName   = "name"
	ClaimTypeUserID = "uid"
)

// Registered time claims. They are managed by the codec and never appear in
// a Claims list handed back to callers.
const (
	claimExpiresAt = "exp"
	claimIssuedAt  = "iat"
	claimNotBefore = "nbf"
)

// Claim is a single named fact embedded in an access token.
type Claim struct {
	Type  string
	Value string

	// raw holds the original JSON for values that were not strings, so a
	// claim read from one token is written back unchanged into the next.
	raw json.RawMessage
}

// Claims is an ordered claim list. Order is preserved through encoding and
// decoding; several claims may share a type.
type Claims []Claim

// NewClaims builds the claim set of an authenticated identity.
func NewClaims(userName, userID string) Claims {
	return Claims{
		{Type: ClaimTypeName, Value: userName},
		{Type: ClaimTypeUserID, Value: userID},
	}
}

// Get returns the value of the first claim of the given type.
func (c Claims) Get(claimType string) (string, bool) {
	for _, cl := range c {
		if cl.Type == claimType {
			return cl.Value, true
		}
	}
	return "", false
}

func (c Claims) Name() string {
	v, _ := c.Get(ClaimTypeName)
	return v
}

func (c Claims) UserID() string {
	v, _ := c.Get(ClaimTypeUserID)
	return v
}

func (c Claims) withoutTimeClaims() Claims {
	out := make(Claims, 0, len(c))
	for _, cl := range c {
		switch cl.Type {
		case claimExpiresAt, claimIssuedAt, claimNotBefore:
			continue
		}
		out = append(out, cl)
	}
	return out
}

// tokenClaims is the JWT body: the ordered claims followed by exp.
// It implements jwt.Claims so the library can run its time validation.
type tokenClaims struct {
	claims    Claims
	expiresAt *jwt.NumericDate
	issuedAt  *jwt.NumericDate
	notBefore *jwt.NumericDate
}

var _ jwt.Claims = (*tokenClaims)(nil)

func (t *tokenClaims) GetExpirationTime() (*jwt.NumericDate, error) { return t.expiresAt, nil }
func (t *tokenClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return t.issuedAt, nil }
func (t *tokenClaims) GetNotBefore() (*jwt.NumericDate, error)      { return t.notBefore, nil }
func (t *tokenClaims) GetIssuer() (string, error)                   { return "", nil }
func (t *tokenClaims) GetSubject() (string, error)                  { return "", nil }
func (t *tokenClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// MarshalJSON writes claims in order. Claims sharing a type are folded into
// one JSON array at the position of the first occurrence.
func (t *tokenClaims) MarshalJSON() ([]byte, error) {
	var order []string
	grouped := map[string][]json.RawMessage{}

	for _, cl := range t.claims {
		v := cl.raw
		if v == nil {
			b, err := json.Marshal(cl.Value)
			if err != nil {
				return nil, err
			}
			v = b
		}
		if _, seen := grouped[cl.Type]; !seen {
			order = append(order, cl.Type)
		}
		grouped[cl.Type] = append(grouped[cl.Type], v)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		values := grouped[name]
		if len(values) == 1 {
			buf.Write(values[0])
			continue
		}
		buf.WriteByte('[')
		for j, v := range values {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(v)
		}
		buf.WriteByte(']')
	}

	for _, tc := range []struct {
		name string
		date *jwt.NumericDate
	}{
		{claimNotBefore, t.notBefore},
		{claimExpiresAt, t.expiresAt},
		{claimIssuedAt, t.issuedAt},
	} {
		if tc.date == nil {
			continue
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%d", tc.name, tc.date.Unix())
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the claim object preserving key order.
func (t *tokenClaims) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("claims must be a JSON object")
	}

	*t = tokenClaims{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return errors.New("claim name must be a string")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		switch name {
		case claimExpiresAt, claimIssuedAt, claimNotBefore:
			date := new(jwt.NumericDate)
			if err := date.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("claim %s: %w", name, err)
			}
			switch name {
			case claimExpiresAt:
				t.expiresAt = date
			case claimIssuedAt:
				t.issuedAt = date
			default:
				t.notBefore = date
			}
			continue
		}

		t.claims = append(t.claims, decodeClaim(name, raw)...)
	}

	_, err = dec.Token()
	return err
}

// decodeClaim maps one JSON member onto claims. Strings become plain
// values and arrays of two or more items expand into repeated claims, which
// MarshalJSON folds back into an array. Everything else, including null and
// arrays that would not fold back to the same shape, keeps its raw JSON.
func decodeClaim(name string, raw json.RawMessage) []Claim {
	if s, ok := decodeString(raw); ok {
		return []Claim{{Type: name, Value: s}}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil && len(items) > 1 {
		out := make([]Claim, 0, len(items))
		for _, item := range items {
			if s, ok := decodeString(item); ok {
				out = append(out, Claim{Type: name, Value: s})
				continue
			}
			out = append(out, rawClaim(name, item))
		}
		return out
	}

	return []Claim{rawClaim(name, raw)}
}

func decodeString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func rawClaim(name string, raw json.RawMessage) Claim {
	raw = append(json.RawMessage(nil), bytes.TrimSpace(raw)...)
	return Claim{Type: name, Value: string(raw), raw: raw}
}
