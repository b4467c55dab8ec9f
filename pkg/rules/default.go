package rules

// DefaultVocabulary is the compiled-in table used by the rename tool for both
// content rewriting and file name abbreviation.
func DefaultVocabulary() *Map {
	return MustNew(
		Rule{Old: "Hello world", New: "hello everyone"},
		Rule{Old: "Hello", New: "hello"},
		Rule{Old: "Cat", New: "Dog"},
	)
}

// DefaultObjectRenames is the compiled-in table used by the replace tool when
// no config file is given.
func DefaultObjectRenames() *Map {
	return MustNew(
		Rule{Old: "symopcmodes_xuv.o", New: "symopcmodes_euv.o"},
		Rule{Old: "cuda_wrap_xuv_sim.o", New: "cuda_wrap_euv_sim.o"},
	)
}
