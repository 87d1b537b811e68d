//go:build binauraldebug

package delay

const lagAssertions = true
