package permission

// EntryRequest is a caller-supplied literal entry in a create/update
// request. Callers may supply the symbolic token, the numeric code, or
// both; when both are present they must agree.
type EntryRequest struct {
	// Name is the symbolic token ("V", "CR", ...); optional.
	Name string

	// Code is the numeric code; nil when only the name is given.
	Code *int

	// Principal is the wire principal reference (keyword, prefixed
	// group, or full IRI).
	Principal string
}

// BuildLiteral validates caller-supplied entries and assembles a
// canonical literal of the given kind.
//
// defaults, when non-empty, is substituted for an empty request (the
// project's configured default entries); an empty request with no
// defaults fails with EMPTY_PERMISSION_SET.
func BuildLiteral(kind Kind, requests []EntryRequest, defaults []Entry) (Literal, error) {
	if len(requests) == 0 {
		if len(defaults) == 0 {
			return Literal{}, &ValidationError{
				Code:    ErrCodeEmptyPermissionSet,
				Message: "no permission entries supplied and no project defaults configured",
			}
		}
		lit := Literal{Kind: kind, Entries: append([]Entry(nil), defaults...)}
		lit.canonicalize()
		return lit, nil
	}

	seen := map[string]bool{}
	entries := make([]Entry, 0, len(requests))
	for _, req := range requests {
		code, err := resolveCode(kind, req)
		if err != nil {
			return Literal{}, err
		}
		if req.Principal == "" {
			return Literal{}, &ValidationError{
				Code:    ErrCodeMissingPrincipal,
				Message: "permission entry has no principal reference",
				Token:   Token(kind, code),
			}
		}
		principal, ok := resolvePrincipal(req.Principal)
		if !ok {
			return Literal{}, &ValidationError{
				Code:    ErrCodeMissingPrincipal,
				Message: "unrecognized principal reference",
				Token:   req.Principal,
			}
		}
		if seen[principal] {
			return Literal{}, &ValidationError{
				Code:    ErrCodeDuplicatePrincipal,
				Message: "principal listed more than once",
				Token:   req.Principal,
			}
		}
		seen[principal] = true
		entries = append(entries, Entry{Code: code, Principal: principal})
	}

	lit := Literal{Kind: kind, Entries: entries}
	lit.canonicalize()
	return lit, nil
}

// resolveCode reconciles the symbolic and numeric forms of a requested
// code.
func resolveCode(kind Kind, req EntryRequest) (Code, error) {
	var named Code
	haveName := false
	if req.Name != "" {
		c, ok := ParseCode(kind, req.Name)
		if !ok {
			return 0, &ValidationError{
				Code:    ErrCodeInvalidPermissionCode,
				Message: "unknown " + kind.String() + " permission token",
				Token:   req.Name,
			}
		}
		named = c
		haveName = true
	}

	if req.Code != nil {
		numeric := Code(*req.Code)
		if !ValidCode(kind, numeric) {
			return 0, &ValidationError{
				Code:    ErrCodeInvalidPermissionCode,
				Message: "numeric code outside the " + kind.String() + " enumeration",
				Token:   Token(kind, numeric),
			}
		}
		if haveName && named != numeric {
			return 0, &ValidationError{
				Code:    ErrCodeInconsistentCodeAndLabel,
				Message: "numeric code and symbolic name map to different permissions",
				Token:   req.Name,
			}
		}
		return numeric, nil
	}

	if !haveName {
		return 0, &ValidationError{
			Code:    ErrCodeInvalidPermissionCode,
			Message: "permission entry carries neither name nor code",
		}
	}
	return named, nil
}
