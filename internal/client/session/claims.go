package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/fleamarket/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser(jwt.WithJSONNumber())

// DecodeClaims reads the user id and role from a JWT credential. The
// signature and expiry are not checked; the result only drives what the
// client shows, the backend still authorizes every call.
//
// The id comes from the "userId" claim (string or number), falling back to
// "sub". A missing role means common.RoleUser.
func DecodeClaims(credential string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(credential, claims)
	// An unknown "alg" still leaves the claims decoded.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return Identity{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	id := claimString(claims["userId"])
	if id == "" {
		id = claimString(claims["sub"])
	}
	if id == "" {
		return Identity{}, fmt.Errorf("%w: no user id claim", common.ErrInvalidToken)
	}

	role := claimString(claims["role"])
	if role == "" {
		role = common.RoleUser
	}
	return Identity{UserID: id, Role: role}, nil
}

func claimString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
