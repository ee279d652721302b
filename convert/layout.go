// layout.go - Anpassung der Tensor-Layouts an das native Backend
package convert

import (
	"fmt"

	"github.com/pdevine/tensor"
)

// linearWeights sind die Gewichte vollverbundener Schichten; Torch legt
// sie als [out, in] ab, das Backend erwartet [in, out]
var linearWeights = map[string]bool{
	"knl_decoder.fc.weight":     true,
	"inference_net.mean.weight": true,
	"inference_net.std.weight":  true,
}

// repack passt Layout und Form eines Tensors an; Faltungsgewichte
// behalten ihre Torch-Form
func repack(name string, data []float32, shape []int) ([]float32, []int, error) {
	if !linearWeights[name] {
		return data, shape, nil
	}
	if len(shape) != 2 {
		return nil, nil, fmt.Errorf("convert: linear weight %q has shape %v", name, shape)
	}

	n := tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data))
	if err := n.T(1, 0); err != nil {
		return nil, nil, fmt.Errorf("convert: transpose %q: %w", name, err)
	}
	if err := n.Transpose(); err != nil {
		return nil, nil, fmt.Errorf("convert: transpose %q: %w", name, err)
	}

	out, ok := n.Data().([]float32)
	if !ok {
		return nil, nil, fmt.Errorf("convert: transpose %q: unexpected backing %T", name, n.Data())
	}

	return out, []int{shape[1], shape[0]}, nil
}
