package trace

// scriptBitwise plays out the program the same way the basic script does,
// but step descriptions additionally render integer values in binary so the
// bit manipulation is visible.
func (g *Generator) scriptBitwise() {
	g.binaryDesc = true
	g.scriptBasic()
}
