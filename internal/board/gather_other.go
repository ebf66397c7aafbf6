//go:build !amd64 || purego

package board

func selectGatherer() Gatherer {
	return Portable
}
