//go:build amd64 && !purego

package board

import "golang.org/x/sys/cpu"

//go:noescape
func pextBMI2(x, mask uint64) uint64

//go:noescape
func pdepBMI2(x, mask uint64) uint64

// bmi2Gatherer uses the PEXT/PDEP instructions.
type bmi2Gatherer struct{}

func (bmi2Gatherer) Extract(x, mask uint64) uint64 { return pextBMI2(x, mask) }
func (bmi2Gatherer) Deposit(x, mask uint64) uint64 { return pdepBMI2(x, mask) }
func (bmi2Gatherer) Name() string                  { return "bmi2" }

func selectGatherer() Gatherer {
	if cpu.X86.HasBMI2 {
		return bmi2Gatherer{}
	}
	return Portable
}
