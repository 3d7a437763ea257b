package molecule

// element describes the chemistry the parser and the valence checks need
// for one entry of the periodic table.
type element struct {
	Symbol string
	Number int
	// Valences lists the allowed neutral valences in ascending order.  An
	// empty slice means the valence of the element is not checked.
	Valences []int
}

// elements is indexed by atomic number.  Index 0 is the SMILES wildcard.
var elements = [...]element{
	{"*", 0, nil},
	{"H", 1, []int{1}},
	{"He", 2, []int{0}},
	{"Li", 3, []int{1}},
	{"Be", 4, []int{2}},
	{"B", 5, []int{3}},
	{"C", 6, []int{4}},
	{"N", 7, []int{3}},
	{"O", 8, []int{2}},
	{"F", 9, []int{1}},
	{"Ne", 10, []int{0}},
	{"Na", 11, []int{1}},
	{"Mg", 12, []int{2}},
	{"Al", 13, []int{3, 6}},
	{"Si", 14, []int{4, 6}},
	{"P", 15, []int{3, 5, 7}},
	{"S", 16, []int{2, 4, 6}},
	{"Cl", 17, []int{1}},
	{"Ar", 18, []int{0}},
	{"K", 19, []int{1}},
	{"Ca", 20, []int{2}},
	{"Sc", 21, nil},
	{"Ti", 22, nil},
	{"V", 23, nil},
	{"Cr", 24, nil},
	{"Mn", 25, nil},
	{"Fe", 26, nil},
	{"Co", 27, nil},
	{"Ni", 28, nil},
	{"Cu", 29, nil},
	{"Zn", 30, nil},
	{"Ga", 31, []int{3}},
	{"Ge", 32, []int{4}},
	{"As", 33, []int{3, 5, 7}},
	{"Se", 34, []int{2, 4, 6}},
	{"Br", 35, []int{1}},
	{"Kr", 36, []int{0}},
	{"Rb", 37, []int{1}},
	{"Sr", 38, []int{2}},
	{"Y", 39, nil},
	{"Zr", 40, nil},
	{"Nb", 41, nil},
	{"Mo", 42, nil},
	{"Tc", 43, nil},
	{"Ru", 44, nil},
	{"Rh", 45, nil},
	{"Pd", 46, nil},
	{"Ag", 47, nil},
	{"Cd", 48, nil},
	{"In", 49, []int{3}},
	{"Sn", 50, []int{2, 4}},
	{"Sb", 51, []int{3, 5, 7}},
	{"Te", 52, []int{2, 4, 6}},
	{"I", 53, []int{1, 3, 5}},
	{"Xe", 54, []int{0}},
	{"Cs", 55, []int{1}},
	{"Ba", 56, []int{2}},
	{"La", 57, nil},
	{"Ce", 58, nil},
	{"Pr", 59, nil},
	{"Nd", 60, nil},
	{"Pm", 61, nil},
	{"Sm", 62, nil},
	{"Eu", 63, nil},
	{"Gd", 64, nil},
	{"Tb", 65, nil},
	{"Dy", 66, nil},
	{"Ho", 67, nil},
	{"Er", 68, nil},
	{"Tm", 69, nil},
	{"Yb", 70, nil},
	{"Lu", 71, nil},
	{"Hf", 72, nil},
	{"Ta", 73, nil},
	{"W", 74, nil},
	{"Re", 75, nil},
	{"Os", 76, nil},
	{"Ir", 77, nil},
	{"Pt", 78, nil},
	{"Au", 79, nil},
	{"Hg", 80, nil},
	{"Tl", 81, []int{3}},
	{"Pb", 82, []int{2, 4}},
	{"Bi", 83, []int{3, 5}},
	{"Po", 84, []int{2}},
	{"At", 85, []int{1}},
	{"Rn", 86, []int{0}},
	{"Fr", 87, []int{1}},
	{"Ra", 88, []int{2}},
	{"Ac", 89, nil},
	{"Th", 90, nil},
	{"Pa", 91, nil},
	{"U", 92, nil},
	{"Np", 93, nil},
	{"Pu", 94, nil},
	{"Am", 95, nil},
	{"Cm", 96, nil},
	{"Bk", 97, nil},
	{"Cf", 98, nil},
	{"Es", 99, nil},
	{"Fm", 100, nil},
	{"Md", 101, nil},
	{"No", 102, nil},
	{"Lr", 103, nil},
}

var symbolIndex = func() map[string]int {
	m := make(map[string]int, len(elements))
	for _, e := range elements[1:] {
		m[e.Symbol] = e.Number
	}
	return m
}()

// Atomic numbers referenced by name in the chemistry code.
const (
	numH  = 1
	numB  = 5
	numC  = 6
	numN  = 7
	numO  = 8
	numF  = 9
	numP  = 15
	numS  = 16
	numCl = 17
	numSe = 34
	numBr = 35
	numTe = 52
	numI  = 53
)

// lookupElement returns the atomic number for a case-sensitive symbol.
func lookupElement(symbol string) (int, bool) {
	n, ok := symbolIndex[symbol]
	return n, ok
}

// ElementSymbol returns the periodic-table symbol for an atomic number, or
// "*" for the wildcard and for numbers outside the table.
func ElementSymbol(number int) string {
	if number <= 0 || number >= len(elements) {
		return "*"
	}
	return elements[number].Symbol
}

// valenceList returns the allowed valences for an atom, applying the
// isoelectronic rule for charged atoms (N+ behaves like C, O- like F).
// A nil result disables valence checking for the atom.
func valenceList(number, charge int) []int {
	if number <= 0 || number >= len(elements) {
		return nil
	}
	if charge == 0 {
		return elements[number].Valences
	}
	shifted := number - charge
	if shifted <= 0 || shifted >= len(elements) {
		return nil
	}
	// Only shift within the main-group block where the rule holds.
	if elements[number].Valences == nil || elements[shifted].Valences == nil {
		return nil
	}
	return elements[shifted].Valences
}

// organicSubset reports whether an element may be written without brackets.
func organicSubset(number int) bool {
	switch number {
	case numB, numC, numN, numO, numP, numS, numF, numCl, numBr, numI:
		return true
	}
	return false
}

// aromaticCapable reports whether an element may carry a lowercase symbol.
func aromaticCapable(number int) bool {
	switch number {
	case numB, numC, numN, numO, numP, numS, numSe, 33, numTe:
		return true
	}
	return false
}

// implicitHydrogens computes the hydrogen count the SMILES organic-subset
// rules assign to an unbracketed atom whose explicit bond orders sum to
// bondSum (aromatic bonds counted as one).
func implicitHydrogens(number int, aromatic bool, bondSum int) int {
	vals := elements[number].Valences
	if len(vals) == 0 {
		return 0
	}
	if aromatic {
		h := vals[0] - bondSum - 1
		if h < 0 {
			return 0
		}
		return h
	}
	for _, v := range vals {
		if v >= bondSum {
			return v - bondSum
		}
	}
	return 0
}

//Personal.AI order the ending
