//go:build debug

package focus

// Debug builds treat an invariant violation as fatal.
const strictInvariants = true
