//go:build !debug

package focus

// Release builds drop offending pairs and keep going.
const strictInvariants = false
