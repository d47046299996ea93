package ortsession

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// CPUFeatures returns a short summary of the SIMD features that the OpenVINO and MLAS kernels
// can take advantage of, eg "amd64 [sse4.1 avx2]".
func CPUFeatures() string {
	features := []string{}
	add := func(has bool, name string) {
		if has {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
		add(cpu.X86.HasAVX512VNNI, "avx512vnni")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasFPHP, "fp16")
		add(cpu.ARM64.HasASIMDDP, "dotprod")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return runtime.GOARCH + " [" + strings.Join(features, " ") + "]"
}
