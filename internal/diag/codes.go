package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Indented tree reader
	ItfInfo          Code = 1000
	ItfInvalidIndent Code = 1001

	// Declaration syntax
	SynInfo            Code = 2000
	SynInvalidDecl     Code = 2001
	SynUnexpectedChild Code = 2002
	SynInvalidType     Code = 2003
	SynInvalidValue    Code = 2004
	SynInvalidInteger  Code = 2005
	SynInvalidRange    Code = 2006
	SynUnknownTopLevel Code = 2007
	SynInvalidDocNode  Code = 2008
	SynInvalidSection  Code = 2009

	// ABI semantics
	SemaInfo            Code = 3000
	SemaDuplicateType   Code = 3001
	SemaDuplicateSys    Code = 3002
	SemaUnknownType     Code = 3003
	SemaUnknownValue    Code = 3004
	SemaBadVariantTag   Code = 3005
	SemaNoSuchMember    Code = 3006
	SemaUnresolvedLink  Code = 3007
	SemaMissingDoc      Code = 3008
	SemaDependencyCycle Code = 3009
	SemaRangeOfVoid     Code = 3010
	SemaDuplicateMember Code = 3011

	// Layout computation
	LayoutInfo  Code = 4000
	LayoutError Code = 4001

	// IO and project configuration
	IOInfo         Code = 5000
	IOLoadFile     Code = 5001
	IOBadManifest  Code = 5002
	IOCacheFailure Code = 5003
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	ItfInfo:          "Indented tree information",
	ItfInvalidIndent: "Invalid indentation",

	SynInfo:            "Syntax information",
	SynInvalidDecl:     "Malformed declaration",
	SynUnexpectedChild: "Unexpected child node",
	SynInvalidType:     "Invalid type expression",
	SynInvalidValue:    "Invalid value declaration",
	SynInvalidInteger:  "Invalid integer literal",
	SynInvalidRange:    "Invalid range member",
	SynUnknownTopLevel: "Unrecognized top-level declaration",
	SynInvalidDocNode:  "Documentation line with children",
	SynInvalidSection:  "Invalid section",

	SemaInfo:            "Semantic information",
	SemaDuplicateType:   "Duplicate type definition",
	SemaDuplicateSys:    "Duplicate syscall definition",
	SemaUnknownType:     "Unknown type",
	SemaUnknownValue:    "Unknown value",
	SemaBadVariantTag:   "Invalid variant tag",
	SemaNoSuchMember:    "No such member",
	SemaUnresolvedLink:  "Unresolved documentation link",
	SemaMissingDoc:      "Missing documentation",
	SemaDependencyCycle: "Dependency cycle between types",
	SemaRangeOfVoid:     "Range over a type without size",
	SemaDuplicateMember: "Duplicate member name",

	LayoutInfo:  "Layout information",
	LayoutError: "Layout cannot be computed",

	IOInfo:         "IO information",
	IOLoadFile:     "Cannot load file",
	IOBadManifest:  "Invalid project manifest",
	IOCacheFailure: "Cache failure",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ITF%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LAY%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
