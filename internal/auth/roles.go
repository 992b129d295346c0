package auth

// RolesIntersect grants access iff the caller's role set intersects the
// required set (logical OR across required roles). An empty caller set never
// satisfies a non-empty requirement. Server middleware and the session client
// both decide through this function so the two can never disagree.
func RolesIntersect(callerRoles, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, have := range callerRoles {
		for _, want := range required {
			if have == want {
				return true
			}
		}
	}
	return false
}
