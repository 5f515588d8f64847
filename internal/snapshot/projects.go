package snapshot

// FLP project process ids, ported from original_source's
// crates/common/src/projects.rs. A delegation preference's wallet_to
// must name one of these to produce a delegation_positions row; any
// other wallet_to is a valid preference target this pipeline simply
// does not materialize a position for.
const (
	PIPID     = "4hXj_E-5fAKmo4E8KjgQvuDJKAFk9P2grhycVmISDLs"
	APUSPID   = "jHZBsy0SalZ6I5BmYKRUt0AtLsn-FCFhqf_n6AgwGlc"
	LOADPID   = "Qz3n2P-EiWNoWsvk7gKLtrV9ChvSXQ5HJPgPklWEgQ0"
	BOTGPID   = "UcBPqkaVI7W4I_YMznrt2JUoyc_7TScCdZWOOSBvMSU"
	AOSPID    = "t7_efxAUDftIEl9QfBi0KYSz8uHpMS81xfD3eqd89rQ"
	WNDRPID   = "11T2aA8M-ZcoEnDqG37Kf2dzEGY2r4_CyYeiN_1VTvU"
	ACTIONPID = "NXZjrPKh-fQx8BUCG_OXBUtB4Ix8Xf0gbUtREFoWQ2Q"
	SMONEYPID = "oIuISObCStjTFMnV3CrrERRb9KTDGN4507-ARysYzLE"
	LQDPID    = "N0L1lUC-35wgyXK31psEHRjySjQMWPs_vHtTas5BJa8"
	GAMEPID   = "nYHhoSEtelyL3nQ6_CFoOVnZfnz2VHK-nEez962YMm8"
	NAUPID    = "oTkFjTiRUKGp-Lk1YduBDTRRc7j1dM0W_bTgp5Aach8"
	RELLAPID  = "_L_GMvgax750A8oORtNPetcmq5fog3K6WtvY4PFpipo"
	ARIOPID   = "rW7h9J9jE2Xp36y4SKn2HgZaOuzRmbMfBRPwrFFifHE"
	PIXLPID   = "3eZ6_ry6FD9CB58ImCQs6Qx_rJdDUGhz-D2W1AqzHD8"
	VELAPID   = "8TRsYFzbhp97Er5bFJL4Xofa4Txv4fv8S0szEscqopU"
	INFPID    = "LnFIQUwAdMZ9LEWlfQ7VZ3zJOW-0p8Irc_2gAVshs3w"
)

// knownProjects is the set of FLP project identifiers a delegation
// preference may point at (spec glossary "FLP project").
var knownProjects = map[string]struct{}{
	PIPID:     {},
	APUSPID:   {},
	LOADPID:   {},
	BOTGPID:   {},
	AOSPID:    {},
	WNDRPID:   {},
	ACTIONPID: {},
	SMONEYPID: {},
	LQDPID:    {},
	GAMEPID:   {},
	NAUPID:    {},
	RELLAPID:  {},
	ARIOPID:   {},
	PIXLPID:   {},
	VELAPID:   {},
	INFPID:    {},
}

func isKnownProject(walletTo string) bool {
	_, ok := knownProjects[walletTo]
	return ok
}
