// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":      "0",
	"MEMORY_SIZE": fmt.Sprintf("%#x", MEMORY_SIZE),
	"FLAG_CY":     fmt.Sprintf("%#x", FLAG_CY),
	"FLAG_P":      fmt.Sprintf("%#x", FLAG_P),
	"FLAG_AC":     fmt.Sprintf("%#x", FLAG_AC),
	"FLAG_Z":      fmt.Sprintf("%#x", FLAG_Z),
	"FLAG_S":      fmt.Sprintf("%#x", FLAG_S),
}

// Assembler is a single pass macro assembler for the 8080.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	ip        int // Location counter.
	expansion int // Count of macro expansions, for '@' local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	regMap    = map[string]CodeReg{}
	pairMap   = map[string]CodePair{}
	aluMap    = map[string]CodeAluOp{}
	aluImmMap = map[string]CodeAluOp{}
	addrMap   = map[string]Code{
		"lda":  CODE_LDA,
		"sta":  CODE_STA,
		"lhld": CODE_LHLD,
		"shld": CODE_SHLD,
		"jmp":  CODE_JMP,
		"call": CODE_CALL,
	}
	impliedMap = map[string]Code{
		"nop":  CODE_NOP,
		"hlt":  CODE_HLT,
		"rlc":  CODE_RLC,
		"rrc":  CODE_RRC,
		"ral":  CODE_RAL,
		"rar":  CODE_RAR,
		"daa":  CODE_DAA,
		"cma":  CODE_CMA,
		"stc":  CODE_STC,
		"cmc":  CODE_CMC,
		"ret":  CODE_RET,
		"pchl": CODE_PCHL,
		"sphl": CODE_SPHL,
		"xchg": CODE_XCHG,
		"xthl": CODE_XTHL,
		"ei":   CODE_EI,
		"di":   CODE_DI,
	}
)

func init() {
	for n := range 8 {
		reg := CodeReg(n)
		regMap[reg.String()] = reg

		op := CodeAluOp(n)
		aluMap[op.String()] = op
		aluImmMap[op.Immediate()] = op

		cond := CodeCond(n)
		impliedMap["r"+cond.String()] = MakeCodeCond(CODE_RCC, cond)
		addrMap["j"+cond.String()] = MakeCodeCond(CODE_JCC, cond)
		addrMap["c"+cond.String()] = MakeCodeCond(CODE_CCC, cond)
	}

	for n := range 4 {
		pair := CodePair(n)
		pairMap[pair.String()] = pair
	}
	pairMap["bc"] = PAIR_BC
	pairMap["de"] = PAIR_DE
	pairMap["hl"] = PAIR_HL
}

// isIdent returns true if word could name a label.
func isIdent(word string) bool {
	for n, r := range word {
		switch {
		case r == '_' || r == '.' || unicode.IsLetter(r):
		case n > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return len(word) > 0
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	invert := false
	if strings.HasPrefix(word, "~") {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word)
		return
	}

	label, is_label := asm.Label[word]
	switch {
	case word == "$":
		value = asm.ip
	case is_label:
		value = label
	default:
		digits, base := word, 0
		if len(word) > 1 && unicode.IsDigit(rune(word[0])) && strings.HasSuffix(strings.ToLower(word), "h") {
			// Intel style 0FFh
			digits, base = word[:len(word)-1], 16
		}
		v64, perr := strconv.ParseInt(digits, base, 32)
		if perr != nil {
			err = ErrParseNumber(word)
			return
		}
		value = int(v64)
	}

	if invert {
		value = ^value
	}

	return
}

// byteOf returns an 8-bit operand.
func (asm *Assembler) byteOf(word string) (value uint8, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v < -0x80 || v > 0xff {
		err = ErrValueRange
		return
	}
	value = uint8(v)
	return
}

// wordOf returns a 16-bit operand. An unknown identifier is returned as a
// label to be linked after the last line has been read.
func (asm *Assembler) wordOf(word string) (value uint16, label string, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		if _, ok := err.(ErrParseNumber); ok && isIdent(word) {
			err = nil
			label = word
		}
		return
	}
	if v < -0x8000 || v > 0xffff {
		err = ErrValueRange
		return
	}
	value = uint16(v)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		if !isIdent(key) || strings.Contains(key, ".") {
			continue
		}
		var v int
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	for key, addr := range asm.Label {
		if isIdent(key) && !strings.Contains(key, ".") {
			pred[key] = starlark.MakeInt(addr)
		}
	}
	pred["here"] = starlark.MakeInt(asm.ip)

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// unescape expands a backslash escape.
func unescape(str string) (out string, ok bool) {
	switch str {
	case "\\\\":
		out = "\\"
	case "\\n":
		out = "\n"
	case "\\r":
		out = "\r"
	case "\\t":
		out = "\t"
	case "\\e":
		out = "\033"
	case "\\'":
		out = "'"
	case "\\\"":
		out = "\""
	default:
		return
	}
	ok = true
	return
}

var (
	reString    = regexp.MustCompile(`"(\\.|[^"\\])*"`)
	reEscape    = regexp.MustCompile(`\\.`)
	reCharacter = regexp.MustCompile(`'(\\.|[^'\\])'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
)

// stripComment removes a ';' comment that is not inside quotes.
func stripComment(text string) string {
	var quote rune
	var escaped bool
	for n, r := range text {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
		case r == '"' || r == '\'':
			quote = r
		case r == ';':
			return text[:n]
		}
	}
	return text
}

// splitWords splits a line on blanks and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do "string" evaluations
	line = reString.ReplaceAllStringFunc(line, func(word string) string {
		str := reEscape.ReplaceAllStringFunc(word[1:len(word)-1], func(esc string) string {
			out, ok := unescape(esc)
			if !ok {
				return esc
			}
			return out
		})
		var values []string
		for _, c := range []byte(str) {
			values = append(values, fmt.Sprintf("%v", c))
		}
		return " " + strings.Join(values, " ") + " "
	})

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			var ok bool
			str, ok = unescape(str)
			if !ok {
				return word
			}
		}
		return fmt.Sprintf("%v", str[0])
	})

	if strings.ContainsRune(line, '"') {
		err = ErrStringSyntax
		return
	}

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if len(words) > 0 && strings.ToLower(words[0]) == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		if len(word) == 0 {
			continue
		}

		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.ip
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.ip = 0
	asm.expansion = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && strings.ToLower(words[0]) == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && strings.ToLower(words[0]) == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		for _, link := range op.Links {
			ip, ok := asm.Label[link.Label]
			if !ok {
				lineno = op.LineNo
				line = strings.Join(op.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			op.Codes[link.Offset+0] = uint8(ip)
			op.Codes[link.Offset+1] = uint8(ip >> 8)
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// args checks the operand count of an instruction.
func args(words []string, count int) (err error) {
	switch {
	case len(words) < count:
		err = ErrOpcodeValueMissing
	case len(words) > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// getReg gets the register selector for a word.
func getReg(word string) (reg CodeReg, err error) {
	reg, ok := regMap[strings.ToLower(word)]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// getPair gets the register pair selector for a word. The last selector
// names PSW in place of SP when psw is set.
func getPair(word string, psw bool) (pair CodePair, err error) {
	word = strings.ToLower(word)
	if word == "psw" || word == "sp" {
		if psw != (word == "psw") {
			err = ErrPairInvalid
			return
		}
		pair = PAIR_SP
		return
	}
	pair, ok := pairMap[word]
	if !ok {
		err = ErrPairInvalid
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []uint8
	var links []Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words
	ip := asm.ip

	defer func() {
		if err != nil || len(codes) == 0 {
			return
		}
		if ip+len(codes) > MEMORY_SIZE {
			err = ErrAddressRange
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: ip, Words: initial_words, Codes: codes, Links: links}
		asm.Opcode = append(asm.Opcode, opcode)
		asm.ip = ip + len(codes)
	}()

	// appendWord appends a 16-bit little-endian operand.
	appendWord := func(word string) (err error) {
		value, label, err := asm.wordOf(word)
		if err != nil {
			return
		}
		if len(label) != 0 {
			links = append(links, Link{Offset: len(codes), Label: label})
		}
		codes = append(codes, uint8(value), uint8(value>>8))
		return
	}

	mnemonic := strings.ToLower(words[0])
	words = words[1:]

	if code, ok := impliedMap[mnemonic]; ok {
		err = args(words, 0)
		codes = append(codes, uint8(code))
		return
	}

	if code, ok := addrMap[mnemonic]; ok {
		err = args(words, 1)
		if err != nil {
			return
		}
		codes = append(codes, uint8(code))
		err = appendWord(words[0])
		return
	}

	if op, ok := aluMap[mnemonic]; ok {
		err = args(words, 1)
		if err != nil {
			return
		}
		var src CodeReg
		src, err = getReg(words[0])
		codes = append(codes, uint8(MakeCodeAlu(op, src)))
		return
	}

	if op, ok := aluImmMap[mnemonic]; ok {
		err = args(words, 1)
		if err != nil {
			return
		}
		var value uint8
		value, err = asm.byteOf(words[0])
		codes = append(codes, uint8(MakeCodeAluImm(op)), value)
		return
	}

	switch mnemonic {
	case ".org", "org":
		err = args(words, 1)
		if err != nil {
			return
		}
		var value uint16
		var label string
		value, label, err = asm.wordOf(words[0])
		if err == nil && len(label) != 0 {
			err = ErrLabelMissing(label)
		}
		if err != nil {
			return
		}
		asm.ip = int(value)
	case ".ds", "ds":
		err = args(words, 1)
		if err != nil {
			return
		}
		var count int
		count, err = asm.valueOf(words[0])
		if err != nil {
			return
		}
		if count < 0 || asm.ip+count > MEMORY_SIZE {
			err = ErrAddressRange
			return
		}
		asm.ip += count
	case ".db", "db":
		if len(words) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words {
			var value uint8
			value, err = asm.byteOf(word)
			if err != nil {
				return
			}
			codes = append(codes, value)
		}
	case ".dw", "dw":
		if len(words) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words {
			err = appendWord(word)
			if err != nil {
				return
			}
		}
	case "mov":
		err = args(words, 2)
		if err != nil {
			return
		}
		var dst, src CodeReg
		dst, err = getReg(words[0])
		if err != nil {
			return
		}
		src, err = getReg(words[1])
		if err != nil {
			return
		}
		if dst == REG_M && src == REG_M {
			// That encoding is HLT.
			err = ErrRegisterInvalid
			return
		}
		codes = append(codes, uint8(MakeCodeMov(dst, src)))
	case "mvi":
		err = args(words, 2)
		if err != nil {
			return
		}
		var dst CodeReg
		dst, err = getReg(words[0])
		if err != nil {
			return
		}
		var value uint8
		value, err = asm.byteOf(words[1])
		codes = append(codes, uint8(MakeCodeMvi(dst)), value)
	case "inr", "dcr":
		err = args(words, 1)
		if err != nil {
			return
		}
		var dst CodeReg
		dst, err = getReg(words[0])
		if mnemonic == "inr" {
			codes = append(codes, uint8(MakeCodeInr(dst)))
		} else {
			codes = append(codes, uint8(MakeCodeDcr(dst)))
		}
	case "in", "out":
		err = args(words, 1)
		if err != nil {
			return
		}
		var port uint8
		port, err = asm.byteOf(words[0])
		code := CODE_IN
		if mnemonic == "out" {
			code = CODE_OUT
		}
		codes = append(codes, uint8(code), port)
	case "lxi":
		err = args(words, 2)
		if err != nil {
			return
		}
		var pair CodePair
		pair, err = getPair(words[0], false)
		if err != nil {
			return
		}
		codes = append(codes, uint8(MakeCodePair(CODE_LXI, pair)))
		err = appendWord(words[1])
	case "inx", "dcx", "dad", "push", "pop", "ldax", "stax":
		err = args(words, 1)
		if err != nil {
			return
		}
		base := map[string]Code{
			"inx":  CODE_INX,
			"dcx":  CODE_DCX,
			"dad":  CODE_DAD,
			"push": CODE_PUSH,
			"pop":  CODE_POP,
			"ldax": CODE_LDAX,
			"stax": CODE_STAX,
		}[mnemonic]
		var pair CodePair
		pair, err = getPair(words[0], mnemonic == "push" || mnemonic == "pop")
		if err != nil {
			return
		}
		if (mnemonic == "ldax" || mnemonic == "stax") && pair != PAIR_BC && pair != PAIR_DE {
			err = ErrPairInvalid
			return
		}
		codes = append(codes, uint8(MakeCodePair(base, pair)))
	case "rst":
		err = args(words, 1)
		if err != nil {
			return
		}
		var n int
		n, err = asm.valueOf(words[0])
		if err != nil {
			return
		}
		if n < 0 || n > 7 {
			err = ErrValueRange
			return
		}
		codes = append(codes, uint8(MakeCodeRst(uint8(n))))
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
