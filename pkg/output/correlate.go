package output

// Record is one output line paired with the input line that produced it.
type Record struct {
	Batch  int    `json:"batch"`
	Index  int    `json:"index"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Mismatch describes a batch whose command printed a different number of
// lines than it was given.
type Mismatch struct {
	Inputs  int
	Outputs int
}

func (m Mismatch) Any() bool {
	return m.Inputs != m.Outputs
}

// Correlate pairs outputs[k] with inputs[k]. Pairing stops at the shorter of
// the two: unmatched inputs produce no record and excess outputs are dropped.
// offset is the position of inputs[0] in the whole input stream.
func Correlate(batch, offset int, inputs, outputs []string) ([]Record, Mismatch) {
	n := min(len(inputs), len(outputs))
	records := make([]Record, n)
	for k := 0; k < n; k++ {
		records[k] = Record{
			Batch:  batch,
			Index:  offset + k,
			Input:  inputs[k],
			Output: outputs[k],
		}
	}
	return records, Mismatch{Inputs: len(inputs), Outputs: len(outputs)}
}
