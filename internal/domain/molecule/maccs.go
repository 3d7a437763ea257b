package molecule

// maccsKey is one structural key.  A key with count > 0 is set only when
// the pattern has more than count unique matches.
type maccsKey struct {
	bit     int
	smarts  string
	count   int
	pattern *Pattern
}

// Keys 1 (isotope), 125 (aromatic rings) and 166 (fragments) have no SMARTS
// form; 125 and 166 are computed directly in EncodeMACCS.
var maccsKeys = compileMACCSKeys([]maccsKey{
	{bit: 2, smarts: "[#104]"},
	{bit: 3, smarts: "[#32,#33,#34,#50,#51,#52,#82,#83,#84]"},
	{bit: 4, smarts: "[Ac,Th,Pa,U,Np,Pu,Am,Cm,Bk,Cf,Es,Fm,Md,No,Lr]"},
	{bit: 5, smarts: "[Sc,Ti,Y,Zr,Hf]"},
	{bit: 6, smarts: "[La,Ce,Pr,Nd,Pm,Sm,Eu,Gd,Tb,Dy,Ho,Er,Tm,Yb,Lu]"},
	{bit: 7, smarts: "[V,Cr,Mn,Nb,Mo,Tc,Ta,W,Re]"},
	{bit: 8, smarts: "[!#6;!#1]1~*~*~*~1"},
	{bit: 9, smarts: "[Fe,Co,Ni,Ru,Rh,Pd,Os,Ir,Pt]"},
	{bit: 10, smarts: "[Be,Mg,Ca,Sr,Ba,Ra]"},
	{bit: 11, smarts: "*1~*~*~*~1"},
	{bit: 12, smarts: "[Cu,Zn,Ag,Cd,Au,Hg]"},
	{bit: 13, smarts: "[#8]~[#7](~[#6])~[#6]"},
	{bit: 14, smarts: "[#16]-[#16]"},
	{bit: 15, smarts: "[#8]~[#6](~[#8])~[#8]"},
	{bit: 16, smarts: "[!#6;!#1]1~*~*~1"},
	{bit: 17, smarts: "[#6]#[#6]"},
	{bit: 18, smarts: "[#5,#13,#31,#49,#81]"},
	{bit: 19, smarts: "*1~*~*~*~*~*~*~1"},
	{bit: 20, smarts: "[#14]"},
	{bit: 21, smarts: "[#6]=[#6](~[!#6;!#1])~[!#6;!#1]"},
	{bit: 22, smarts: "*1~*~*~1"},
	{bit: 23, smarts: "[#7]~[#6](~[#8])~[#8]"},
	{bit: 24, smarts: "[#7]-[#8]"},
	{bit: 25, smarts: "[#7]~[#6](~[#7])~[#7]"},
	{bit: 26, smarts: "[#6]=;@[#6](@*)@*"},
	{bit: 27, smarts: "[I]"},
	{bit: 28, smarts: "[!#6;!#1]~[CH2]~[!#6;!#1]"},
	{bit: 29, smarts: "[#15]"},
	{bit: 30, smarts: "[#6]~[!#6;!#1](~[#6])(~[#6])~*"},
	{bit: 31, smarts: "[!#6;!#1]~[F,Cl,Br,I]"},
	{bit: 32, smarts: "[#6]~[#16]~[#7]"},
	{bit: 33, smarts: "[#7]~[#16]"},
	{bit: 34, smarts: "[CH2]=*"},
	{bit: 35, smarts: "[Li,Na,K,Rb,Cs,Fr]"},
	{bit: 36, smarts: "[#16R]"},
	{bit: 37, smarts: "[#7]~[#6](~[#8])~[#7]"},
	{bit: 38, smarts: "[#7]~[#6](~[#6])~[#7]"},
	{bit: 39, smarts: "[#8]~[#16](~[#8])~[#8]"},
	{bit: 40, smarts: "[#16]-[#8]"},
	{bit: 41, smarts: "[#6]#[#7]"},
	{bit: 42, smarts: "F"},
	{bit: 43, smarts: "[!#6;!#1;!H0]~*~[!#6;!#1;!H0]"},
	{bit: 44, smarts: "[!#1;!#6;!#7;!#8;!#9;!#14;!#15;!#16;!#17;!#35;!#53]"},
	{bit: 45, smarts: "[#6]=[#6]~[#7]"},
	{bit: 46, smarts: "Br"},
	{bit: 47, smarts: "[#16]~*~[#7]"},
	{bit: 48, smarts: "[#8]~[!#6;!#1](~[#8])(~[#8])"},
	{bit: 49, smarts: "[!+0]"},
	{bit: 50, smarts: "[#6]=[#6](~[#6])~[#6]"},
	{bit: 51, smarts: "[#6]~[#16]~[#8]"},
	{bit: 52, smarts: "[#7]~[#7]"},
	{bit: 53, smarts: "[!#6;!#1;!H0]~*~*~*~[!#6;!#1;!H0]"},
	{bit: 54, smarts: "[!#6;!#1;!H0]~*~*~[!#6;!#1;!H0]"},
	{bit: 55, smarts: "[#8]~[#16]~[#8]"},
	{bit: 56, smarts: "[#8]~[#7](~[#8])~[#6]"},
	{bit: 57, smarts: "[#8R]"},
	{bit: 58, smarts: "[!#6;!#1]~[#16]~[!#6;!#1]"},
	{bit: 59, smarts: "[#16]!:*:*"},
	{bit: 60, smarts: "[#16]=[#8]"},
	{bit: 61, smarts: "*~[#16](~*)~*"},
	{bit: 62, smarts: "*@*!@*@*"},
	{bit: 63, smarts: "[#7]=[#8]"},
	{bit: 64, smarts: "*@*!@[#16]"},
	{bit: 65, smarts: "c:n"},
	{bit: 66, smarts: "[#6]~[#6](~[#6])(~[#6])~*"},
	{bit: 67, smarts: "[!#6;!#1]~[#16]"},
	{bit: 68, smarts: "[!#6;!#1;!H0]~[!#6;!#1;!H0]"},
	{bit: 69, smarts: "[!#6;!#1]~[!#6;!#1;!H0]"},
	{bit: 70, smarts: "[!#6;!#1]~[#7]~[!#6;!#1]"},
	{bit: 71, smarts: "[#7]~[#8]"},
	{bit: 72, smarts: "[#8]~*~*~[#8]"},
	{bit: 73, smarts: "[#16]=*"},
	{bit: 74, smarts: "[CH3]~*~[CH3]"},
	{bit: 75, smarts: "*!@[#7]@*"},
	{bit: 76, smarts: "[#6]=[#6](~*)~*"},
	{bit: 77, smarts: "[#7]~*~[#7]"},
	{bit: 78, smarts: "[#6]=[#7]"},
	{bit: 79, smarts: "[#7]~*~*~[#7]"},
	{bit: 80, smarts: "[#7]~*~*~*~[#7]"},
	{bit: 81, smarts: "[#16]~*(~*)~*"},
	{bit: 82, smarts: "*~[CH2]~[!#6;!#1;!H0]"},
	{bit: 83, smarts: "[!#6;!#1]1~*~*~*~*~1"},
	{bit: 84, smarts: "[NH2]"},
	{bit: 85, smarts: "[#6]~[#7](~[#6])~[#6]"},
	{bit: 86, smarts: "[C;H2,H3][!#6;!#1][C;H2,H3]"},
	{bit: 87, smarts: "[F,Cl,Br,I]!@*@*"},
	{bit: 88, smarts: "[#16]"},
	{bit: 89, smarts: "[#8]~*~*~*~[#8]"},
	{bit: 90, smarts: "[$([!#6;!#1;!H0]~*~*~[CH2]~*),$([!#6;!#1;!H0;R]1@[R]@[R]@[CH2;R]1),$([!#6;!#1;!H0]~[R]1@[R]@[CH2;R]1)]"},
	{bit: 91, smarts: "[$([!#6;!#1;!H0]~*~*~*~[CH2]~*),$([!#6;!#1;!H0;R]1@[R]@[R]@[R]@[CH2;R]1),$([!#6;!#1;!H0]~[R]1@[R]@[R]@[CH2;R]1),$([!#6;!#1;!H0]~*~[R]1@[R]@[CH2;R]1)]"},
	{bit: 92, smarts: "[#8]~[#6](~[#7])~[#6]"},
	{bit: 93, smarts: "[!#6;!#1]~[CH3]"},
	{bit: 94, smarts: "[!#6;!#1]~[#7]"},
	{bit: 95, smarts: "[#7]~*~*~[#8]"},
	{bit: 96, smarts: "*1~*~*~*~*~1"},
	{bit: 97, smarts: "[#7]~*~*~*~[#8]"},
	{bit: 98, smarts: "[!#6;!#1]1~*~*~*~*~*~1"},
	{bit: 99, smarts: "[#6]=[#6]"},
	{bit: 100, smarts: "*~[CH2]~[#7]"},
	{bit: 101, smarts: "[$([R]@1@[R]@[R]@[R]@[R]@[R]@[R]@[R]1),$([R]@1@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]1),$([R]@1@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]1),$([R]@1@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]1),$([R]@1@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]1),$([R]@1@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]1),$([R]@1@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]@[R]1)]"},
	{bit: 102, smarts: "[!#6;!#1]~[#8]"},
	{bit: 103, smarts: "Cl"},
	{bit: 104, smarts: "[!#6;!#1;!H0]~*~[CH2]~*"},
	{bit: 105, smarts: "*@*(@*)@*"},
	{bit: 106, smarts: "[!#6;!#1]~*(~[!#6;!#1])~[!#6;!#1]"},
	{bit: 107, smarts: "[F,Cl,Br,I]~*(~*)~*"},
	{bit: 108, smarts: "[CH3]~*~*~*~[CH2]~*"},
	{bit: 109, smarts: "*~[CH2]~[#8]"},
	{bit: 110, smarts: "[#7]~[#6]~[#8]"},
	{bit: 111, smarts: "[#7]~*~[CH2]~*"},
	{bit: 112, smarts: "*~*(~*)(~*)~*"},
	{bit: 113, smarts: "[#8]!:*:*"},
	{bit: 114, smarts: "[CH3]~[CH2]~*"},
	{bit: 115, smarts: "[CH3]~*~[CH2]~*"},
	{bit: 116, smarts: "[$([CH3]~*~*~[CH2]~*),$([CH3]~*1~*~[CH2]1)]"},
	{bit: 117, smarts: "[#7]~*~[#8]"},
	{bit: 118, smarts: "[$(*~[CH2]~[CH2]~*),$(*1~[CH2]~[CH2]1)]", count: 1},
	{bit: 119, smarts: "[#7]=*"},
	{bit: 120, smarts: "[!#6;R]", count: 1},
	{bit: 121, smarts: "[#7;R]"},
	{bit: 122, smarts: "*~[#7](~*)~*"},
	{bit: 123, smarts: "[#8]~[#6]~[#8]"},
	{bit: 124, smarts: "[!#6;!#1]~[!#6;!#1]"},
	{bit: 126, smarts: "*!@[#8]!@*"},
	{bit: 127, smarts: "*@*!@[#8]", count: 1},
	{bit: 128, smarts: "[$(*~[CH2]~*~*~*~[CH2]~*),$([R]1@[CH2;R]@[R]@[R]@[R]@[CH2;R]1),$(*~[CH2]~[R]1@[R]@[R]@[CH2;R]1),$(*~[CH2]~*~[R]1@[R]@[CH2;R]1)]"},
	{bit: 129, smarts: "[$(*~[CH2]~*~*~[CH2]~*),$([R]1@[CH2]@[R]@[R]@[CH2;R]1),$(*~[CH2]~[R]1@[R]@[CH2;R]1)]"},
	{bit: 130, smarts: "[!#6;!#1]~[!#6;!#1]", count: 1},
	{bit: 131, smarts: "[!#6;!#1;!H0]", count: 1},
	{bit: 132, smarts: "[#8]~*~[CH2]~*"},
	{bit: 133, smarts: "*@*!@[#7]"},
	{bit: 134, smarts: "[F,Cl,Br,I]"},
	{bit: 135, smarts: "[#7]!:*:*"},
	{bit: 136, smarts: "[#8]=*", count: 1},
	{bit: 137, smarts: "[!C;!c;R]"},
	{bit: 138, smarts: "[!#6;!#1]~[CH2]~*", count: 1},
	{bit: 139, smarts: "[O;!H0]"},
	{bit: 140, smarts: "[#8]", count: 3},
	{bit: 141, smarts: "[CH3]", count: 2},
	{bit: 142, smarts: "[#7]", count: 1},
	{bit: 143, smarts: "*@*!@[#8]"},
	{bit: 144, smarts: "*!:*:*!:*"},
	{bit: 145, smarts: "*1~*~*~*~*~*~1", count: 1},
	{bit: 146, smarts: "[#8]", count: 2},
	{bit: 147, smarts: "[$(*~[CH2]~[CH2]~*),$([R]1@[CH2;R]@[CH2;R]1)]"},
	{bit: 148, smarts: "*~[!#6;!#1](~*)~*"},
	{bit: 149, smarts: "[C;H3,H4]", count: 1},
	{bit: 150, smarts: "*!@*@*!@*"},
	{bit: 151, smarts: "[#7;!H0]"},
	{bit: 152, smarts: "[#8]~[#6](~[#6])~[#6]"},
	{bit: 153, smarts: "[!#6;!#1]~[CH2]~*"},
	{bit: 154, smarts: "[#6]=[#8]"},
	{bit: 155, smarts: "*!@[CH2]!@*"},
	{bit: 156, smarts: "[#7]~*(~*)~*"},
	{bit: 157, smarts: "[#6]-[#8]"},
	{bit: 158, smarts: "[#6]-[#7]"},
	{bit: 159, smarts: "[#8]", count: 1},
	{bit: 160, smarts: "[C;H3,H4]"},
	{bit: 161, smarts: "[#7]"},
	{bit: 162, smarts: "a"},
	{bit: 163, smarts: "*1~*~*~*~*~*~1"},
	{bit: 164, smarts: "[#8]"},
	{bit: 165, smarts: "[R]"},
})

// Bits computed from ring and fragment perception rather than SMARTS.
const (
	maccsAromaticRingsBit = 125
	maccsFragmentsBit     = 166
)

func compileMACCSKeys(keys []maccsKey) []maccsKey {
	for i := range keys {
		keys[i].pattern = MustCompileSMARTS(keys[i].smarts)
	}
	return keys
}

// EncodeMACCS computes the MACCS structural key fingerprint of m.  A nil or
// empty molecule yields the empty fingerprint.
func EncodeMACCS(m *Molecule) Fingerprint {
	var fp Fingerprint
	if m == nil || m.NumAtoms() == 0 {
		return fp
	}
	c := newMatchContext(m)
	for _, k := range maccsKeys {
		if k.count == 0 {
			if k.pattern.hasMatch(c) {
				fp = fp.with(k.bit)
			}
			continue
		}
		if len(k.pattern.findMatches(c, k.count+1)) > k.count {
			fp = fp.with(k.bit)
		}
	}
	if m.NumAromaticRings() > 1 {
		fp = fp.with(maccsAromaticRingsBit)
	}
	if m.NumFragments() > 1 {
		fp = fp.with(maccsFragmentsBit)
	}
	return fp
}

// MACCSKeySMARTS returns the SMARTS definition of a key, or "" for keys
// without one.
func MACCSKeySMARTS(bit int) string {
	for _, k := range maccsKeys {
		if k.bit == bit {
			return k.smarts
		}
	}
	return ""
}

//Personal.AI order the ending
