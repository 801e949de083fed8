package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
)

// ExtractGroups reads group memberships from ID token claims. It accepts a
// flat list (["grp-eng", "grp-ops"]), a single string, or a list of objects
// when claimPath names the member field ([{"name": "grp-eng"}] with
// claimPath="name"). A missing claim yields no groups.
func ExtractGroups(claims map[string]any, claimField, claimPath string) ([]string, error) {
	raw, ok := claims[claimField]
	if !ok || raw == nil {
		return []string{}, nil
	}

	if claimPath != "" {
		return extractNestedGroups(raw, claimPath)
	}

	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		groups := make([]string, 0, len(v))
		for _, g := range v {
			s, ok := g.(string)
			if !ok {
				return nil, fmt.Errorf("groups claim %s: expected strings, got %T (set oidc.groups_path for object lists)", claimField, g)
			}
			groups = append(groups, s)
		}
		return groups, nil
	}
	return nil, fmt.Errorf("groups claim %s: unsupported type %T", claimField, raw)
}

func extractNestedGroups(raw any, path string) ([]string, error) {
	var objects []map[string]any
	if err := mapstructure.Decode(raw, &objects); err != nil {
		return nil, fmt.Errorf("decode nested groups: %w", err)
	}

	groups := make([]string, 0, len(objects))
	for _, obj := range objects {
		if val, ok := obj[path].(string); ok && val != "" {
			groups = append(groups, val)
		}
	}
	return groups, nil
}

// ExtractClaimString returns a non-empty string claim.
func ExtractClaimString(claims map[string]any, claimField string) (string, error) {
	raw, ok := claims[claimField]
	if !ok {
		return "", fmt.Errorf("claim field %s not found", claimField)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("claim field %s is not a string", claimField)
	}
	if value == "" {
		return "", fmt.Errorf("claim field %s is empty", claimField)
	}
	return value, nil
}

// optionalClaim returns a string claim or "".
func optionalClaim(claims map[string]any, claimField string) string {
	value, _ := claims[claimField].(string)
	return value
}

// DecodeIDTokenClaims parses the payload of an ID token that the relying
// party has already verified.
func DecodeIDTokenClaims(rawIDToken string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return nil, fmt.Errorf("parse ID token: %w", err)
	}
	return claims, nil
}

// ClaimMapping names the claims an identity is read from.
type ClaimMapping struct {
	GroupsField string
	GroupsPath  string
	AdsIDField  string
}

// Identity is the user and group set asserted by the identity provider.
type Identity struct {
	User   User
	Groups []string
}

// IdentityFromClaims builds an Identity from ID token claims.
func IdentityFromClaims(claims map[string]any, m ClaimMapping) (*Identity, error) {
	email, err := ExtractClaimString(claims, "email")
	if err != nil {
		return nil, err
	}
	groups, err := ExtractGroups(claims, m.GroupsField, m.GroupsPath)
	if err != nil {
		return nil, err
	}

	adsField := m.AdsIDField
	if adsField == "" {
		adsField = "preferred_username"
	}

	return &Identity{
		User: User{
			FirstName: optionalClaim(claims, "given_name"),
			LastName:  optionalClaim(claims, "family_name"),
			Email:     email,
			AdsID:     optionalClaim(claims, adsField),
		},
		Groups: groups,
	}, nil
}
