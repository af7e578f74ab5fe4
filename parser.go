package bread

import "fmt"

// Parser is the hand-written recursive-descent parser over the
// Lexer's on-demand token stream (one token of lookahead plus one of
// peek — never a full buffer), grounded on the teacher's
// grammar_parser.go structure adapted to BreadLang's statement/
// expression grammar (spec §4.3).
type Parser struct {
	lex  *Lexer
	file string
	cur  Token
	peek Token

	// suppressStructLit disables parsing `Ident{...}` as a struct/
	// class literal while inside an `if`/`while` condition or a
	// `for ... in` iterator, where `{` instead opens the body block.
	suppressStructLit int
}

// NewParser creates a parser over src, reporting diagnostics against file.
func NewParser(src, file string) (*Parser, error) {
	p := &Parser{lex: NewLexer(src, file), file: file}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.peek = t
	return nil
}

func (p *Parser) errf(format string, args ...interface{}) error {
	return &BreadError{
		Category: ErrParseError,
		Message:  fmt.Sprintf(format, args...),
		Filename: p.file,
		Line:     p.cur.Pos.Line,
		Column:   p.cur.Pos.Column,
	}
}

func (p *Parser) expect(k TokenKind, what string) (Token, error) {
	if p.cur.Kind != k {
		return Token{}, p.errf("expected %s, got %q", what, p.cur.Text)
	}
	t := p.cur
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return t, nil
}

func (p *Parser) at(k TokenKind) bool { return p.cur.Kind == k }

func (p *Parser) accept(k TokenKind) (bool, error) {
	if p.cur.Kind != k {
		return false, nil
	}
	if err := p.advance(); err != nil {
		return false, err
	}
	return true, nil
}

// ParseProgram parses the entire input and returns its top-level
// statements, or the first syntax/parse error encountered.
func (p *Parser) ParseProgram() (*Program, error) {
	var stmts []Stmt
	// NewParser primed two tokens; if the very first Next() call
	// inside advance() above hit a lex error it would already have
	// surfaced. A second lex error surfaces here on EOF check.
	for !p.at(TokEOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return &Program{Stmts: stmts}, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case TokImport:
		return p.parseImport(pos)
	case TokExport:
		return p.parseExport(pos)
	case TokLet, TokVar, TokConst:
		return p.parseVarDecl(pos)
	case TokPrint:
		return p.parsePrint(pos)
	case TokIf:
		return p.parseIf(pos)
	case TokWhile:
		return p.parseWhile(pos)
	case TokFor:
		return p.parseForIn(pos)
	case TokBreak:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BreakStmt{stmtBase{pos}}, nil
	case TokContinue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ContinueStmt{stmtBase{pos}}, nil
	case TokReturn:
		return p.parseReturn(pos)
	case TokDef:
		fn, err := p.parseFunctionDecl()
		if err != nil {
			return nil, err
		}
		return &FuncDeclStmt{stmtBase{pos}, fn}, nil
	case TokStruct:
		sd, err := p.parseStructDecl()
		if err != nil {
			return nil, err
		}
		return &StructDeclStmt{stmtBase{pos}, sd}, nil
	case TokClass:
		cd, err := p.parseClassDecl()
		if err != nil {
			return nil, err
		}
		return &ClassDeclStmt{stmtBase{pos}, cd}, nil
	default:
		return p.parseExprOrAssignStmt(pos)
	}
}

func (p *Parser) parseBlock() ([]Stmt, error) {
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	var stmts []Stmt
	for !p.at(TokRBrace) {
		if p.at(TokEOF) {
			return nil, p.errf("unterminated block")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseImport(pos Pos) (Stmt, error) {
	if err := p.advance(); err != nil { // consume 'import'
		return nil, err
	}
	path, err := p.expect(TokString, "import path string")
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.at(TokIdent) && p.cur.Text == "as" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		aliasTok, err := p.expect(TokIdent, "import alias")
		if err != nil {
			return nil, err
		}
		alias = aliasTok.Text
	}
	return &ImportStmt{stmtBase{pos}, path.Text, alias}, nil
}

func (p *Parser) parseExport(pos Pos) (Stmt, error) {
	if err := p.advance(); err != nil { // consume 'export'
		return nil, err
	}
	isDefault := false
	if p.at(TokDefault) {
		isDefault = true
		if err := p.advance(); err != nil { // consume 'default'
			return nil, err
		}
	}
	inner, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	name, err := declaredName(inner)
	if err != nil {
		return nil, err
	}
	if isDefault {
		if _, ok := inner.(*VarDeclStmt); !ok {
			return nil, fmt.Errorf("a default export must be a variable declaration")
		}
	}
	return &ExportDeclStmt{stmtBase{pos}, inner, name, isDefault}, nil
}

func declaredName(s Stmt) (string, error) {
	switch v := s.(type) {
	case *VarDeclStmt:
		return v.Name, nil
	case *FuncDeclStmt:
		return v.Decl.Name, nil
	case *StructDeclStmt:
		return v.Decl.Name, nil
	case *ClassDeclStmt:
		return v.Decl.Name, nil
	default:
		return "", fmt.Errorf("export requires a declaration")
	}
}

func (p *Parser) parseVarDecl(pos Pos) (Stmt, error) {
	var kind DeclKind
	switch p.cur.Kind {
	case TokLet:
		kind = DeclLet
	case TokVar:
		kind = DeclVar
	case TokConst:
		kind = DeclConst
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColon, "':' (type annotations are required)"); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeAnnotation()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokAssign, "'='"); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &VarDeclStmt{stmtBase{pos}, kind, name.Text, typ, init}, nil
}

func (p *Parser) parsePrint(pos Pos) (Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	return &PrintStmt{stmtBase{pos}, e}, nil
}

func (p *Parser) parseIf(pos Pos) (Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	p.suppressStructLit++
	cond, err := p.parseExpr()
	p.suppressStructLit--
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseStmts []Stmt
	if ok, err := p.accept(TokElse); err != nil {
		return nil, err
	} else if ok {
		if p.at(TokIf) {
			elseIf, err := p.parseIf(p.cur.Pos)
			if err != nil {
				return nil, err
			}
			elseStmts = []Stmt{elseIf}
		} else {
			elseStmts, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return &IfStmt{stmtBase{pos}, cond, then, elseStmts}, nil
}

func (p *Parser) parseWhile(pos Pos) (Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	p.suppressStructLit++
	cond, err := p.parseExpr()
	p.suppressStructLit--
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{stmtBase{pos}, cond, body}, nil
}

func (p *Parser) parseForIn(pos Pos) (Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "loop variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokIn, "'in'"); err != nil {
		return nil, err
	}
	p.suppressStructLit++
	iter, err := p.parseExpr()
	p.suppressStructLit--
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForInStmt{stmtBase{pos}, name.Text, iter, body}, nil
}

func (p *Parser) parseReturn(pos Pos) (Stmt, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.at(TokRBrace) {
		return &ReturnStmt{stmtBase{pos}, nil}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ReturnStmt{stmtBase{pos}, e}, nil
}

func (p *Parser) parseExprOrAssignStmt(pos Pos) (Stmt, error) {
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if isAssignOp(p.cur.Kind) {
		op := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		switch e.(type) {
		case *Ident, *IndexExpr, *MemberExpr:
			return &AssignStmt{stmtBase{pos}, e, op, rhs}, nil
		default:
			return nil, p.errf("invalid assignment target")
		}
	}
	return &ExprStmt{stmtBase{pos}, e}, nil
}

func isAssignOp(k TokenKind) bool {
	switch k {
	case TokAssign, TokPlusEq, TokMinusEq, TokStarEq, TokSlashEq, TokPercentEq:
		return true
	default:
		return false
	}
}

// ---- function / struct / class declarations ----

func (p *Parser) parseParams() ([]Param, error) {
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	var params []Param
	seenDefault := false
	for !p.at(TokRParen) {
		if len(params) > 0 {
			if _, err := p.expect(TokComma, "','"); err != nil {
				return nil, err
			}
		}
		name, err := p.expect(TokIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon, "':'"); err != nil {
			return nil, err
		}
		typ, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		param := Param{Name: name.Text, Type: typ}
		if ok, err := p.accept(TokAssign); err != nil {
			return nil, err
		} else if ok {
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			param.Default = def
			param.HasDefault = true
			seenDefault = true
		} else if seenDefault {
			return nil, p.errf("parameter %q without a default cannot follow a defaulted parameter", name.Text)
		}
		params = append(params, param)
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseFunctionDecl() (*FunctionDecl, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil { // consume 'def'
		return nil, err
	}
	name, err := p.expect(TokIdent, "function name")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	retType := NewNilType()
	if ok, err := p.accept(TokArrow); err != nil {
		return nil, err
	} else if ok {
		retType, err = p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FunctionDecl{Name: name.Text, Params: params, ReturnType: retType, Body: body, Pos: pos}, nil
}

func (p *Parser) parseStructDecl() (*StructDecl, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil { // consume 'struct'
		return nil, err
	}
	name, err := p.expect(TokIdent, "struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	var fields []FieldDescriptor
	for !p.at(TokRBrace) {
		fname, err := p.expect(TokIdent, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon, "':'"); err != nil {
			return nil, err
		}
		ftyp, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		fields = append(fields, FieldDescriptor{Name: fname.Text, Type: ftyp})
	}
	if _, err := p.expect(TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return &StructDecl{Name: name.Text, Fields: fields, Pos: pos}, nil
}

func (p *Parser) parseClassDecl() (*ClassDecl, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil { // consume 'class'
		return nil, err
	}
	name, err := p.expect(TokIdent, "class name")
	if err != nil {
		return nil, err
	}
	parent := ""
	if ok, err := p.accept(TokExtends); err != nil {
		return nil, err
	} else if ok {
		pn, err := p.expect(TokIdent, "parent class name")
		if err != nil {
			return nil, err
		}
		parent = pn.Text
	}
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	cd := &ClassDecl{Name: name.Text, ParentName: parent, Methods: map[string]*FunctionDecl{}, Pos: pos}
	for !p.at(TokRBrace) {
		switch {
		case p.at(TokInit):
			if cd.Init != nil {
				return nil, p.errf("class %q already has an init constructor", name.Text)
			}
			ipos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			params, err := p.parseParams()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			cd.Init = &FunctionDecl{Name: "init", Params: params, ReturnType: NewNilType(), Body: body, Pos: ipos}
		case p.at(TokDef):
			m, err := p.parseFunctionDecl()
			if err != nil {
				return nil, err
			}
			if _, exists := cd.Methods[m.Name]; exists {
				return nil, p.errf("class %q already has a method named %q", name.Text, m.Name)
			}
			cd.Methods[m.Name] = m
		case p.at(TokIdent):
			fname, err := p.expect(TokIdent, "field name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokColon, "':'"); err != nil {
				return nil, err
			}
			ftyp, err := p.parseTypeAnnotation()
			if err != nil {
				return nil, err
			}
			cd.Fields = append(cd.Fields, FieldDescriptor{Name: fname.Text, Type: ftyp})
		default:
			return nil, p.errf("unexpected token %q in class body", p.cur.Text)
		}
	}
	if _, err := p.expect(TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	if cd.Init == nil {
		return nil, &BreadError{
			Category: ErrParseError,
			Message:  fmt.Sprintf("class %q must declare an init constructor", name.Text),
			Filename: p.file,
			Line:     pos.Line,
			Column:   pos.Column,
		}
	}
	return cd, nil
}

// ---- type annotations ----

func (p *Parser) parseTypeAnnotation() (*TypeDescriptor, error) {
	var base *TypeDescriptor
	if ok, err := p.accept(TokLBracket); err != nil {
		return nil, err
	} else if ok {
		if p.at(TokColon) {
			// `[:]` is only legal inside a dict literal, not a type
			// annotation; reject explicitly.
			return nil, p.errf("expected a type before ':' in dict type annotation")
		}
		first, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		if ok, err := p.accept(TokColon); err != nil {
			return nil, err
		} else if ok {
			second, err := p.parseTypeAnnotation()
			if err != nil {
				return nil, err
			}
			base = NewDictType(first, second)
		} else {
			base = NewArrayType(first)
		}
		if _, err := p.expect(TokRBracket, "']'"); err != nil {
			return nil, err
		}
	} else {
		name, err := p.expect(TokIdent, "type name")
		if err != nil {
			return nil, err
		}
		switch name.Text {
		case "Int":
			base = NewIntType()
		case "Double":
			base = NewDoubleType()
		case "Float":
			base = NewFloatType()
		case "Bool":
			base = NewBoolType()
		case "String":
			base = NewStringType()
		case "Nil":
			base = NewNilType()
		default:
			base = NewStructType(name.Text, nil)
		}
	}
	for p.at(TokQuestion) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		base = NewOptionalType(base)
	}
	return base, nil
}

// ---- expressions ----

func (p *Parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(TokOrOr) {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{node{pos: pos}, OpOr, left, right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.at(TokAndAnd) {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{node{pos: pos}, OpAnd, left, right}
	}
	return left, nil
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.cur.Kind {
		case TokLt:
			op = OpLt
		case TokGt:
			op = OpGt
		case TokLe:
			op = OpLe
		case TokGe:
			op = OpGe
		case TokEq:
			op = OpEq
		case TokNe:
			op = OpNe
		default:
			return left, nil
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{node{pos: pos}, op, left, right}
	}
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(TokPlus) || p.at(TokMinus) {
		op := OpAdd
		if p.at(TokMinus) {
			op = OpSub
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{node{pos: pos}, op, left, right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(TokStar) || p.at(TokSlash) || p.at(TokPercent) {
		var op BinOp
		switch p.cur.Kind {
		case TokStar:
			op = OpMul
		case TokSlash:
			op = OpDiv
		case TokPercent:
			op = OpMod
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{node{pos: pos}, op, left, right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.at(TokBang) || p.at(TokMinus) {
		op := byte('!')
		if p.at(TokMinus) {
			op = '-'
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{node{pos: pos}, op, operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(TokLBracket):
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket, "']'"); err != nil {
				return nil, err
			}
			expr = &IndexExpr{node{pos: pos}, expr, idx}
		case p.at(TokDot):
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(TokIdent, "member name")
			if err != nil {
				return nil, err
			}
			if p.at(TokLParen) {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				expr = &MethodCallExpr{node{pos: pos}, expr, name.Text, args, false}
			} else {
				expr = &MemberExpr{node{pos: pos}, expr, name.Text, false}
			}
		case p.at(TokQuestion) && p.peek.Kind == TokDot:
			pos := p.cur.Pos
			if err := p.advance(); err != nil { // '?'
				return nil, err
			}
			if err := p.advance(); err != nil { // '.'
				return nil, err
			}
			if p.at(TokLParen) {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				expr = &CallExpr{node{pos: pos}, expr, args, true}
			} else {
				name, err := p.expect(TokIdent, "member name")
				if err != nil {
					return nil, err
				}
				if p.at(TokLParen) {
					args, err := p.parseArgs()
					if err != nil {
						return nil, err
					}
					expr = &MethodCallExpr{node{pos: pos}, expr, name.Text, args, true}
				} else {
					expr = &MemberExpr{node{pos: pos}, expr, name.Text, true}
				}
			}
		case p.at(TokLParen):
			pos := p.cur.Pos
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{node{pos: pos}, expr, args, false}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgs() ([]Expr, error) {
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	var args []Expr
	for !p.at(TokRParen) {
		if len(args) > 0 {
			if _, err := p.expect(TokComma, "','"); err != nil {
				return nil, err
			}
		}
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case TokInt:
		v := p.cur.IntVal
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &IntLit{node{pos: pos}, v}, nil
	case TokDouble:
		v := p.cur.DblVal
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &DoubleLit{node{pos: pos}, v}, nil
	case TokString:
		v := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &StringLit{node{pos: pos}, v}, nil
	case TokTrue, TokFalse:
		v := p.cur.Kind == TokTrue
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolLit{node{pos: pos}, v}, nil
	case TokNil:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &NilLit{node{pos: pos}}, nil
	case TokSelf:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &SelfExpr{node{pos: pos}}, nil
	case TokSuper:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &SuperExpr{node{pos: pos}}, nil
	case TokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		saved := p.suppressStructLit
		p.suppressStructLit = 0
		e, err := p.parseExpr()
		p.suppressStructLit = saved
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case TokLBracket:
		return p.parseArrayOrDictLit(pos)
	case TokIdent:
		name := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.suppressStructLit == 0 && p.at(TokLBrace) {
			return p.parseStructLit(pos, name)
		}
		return &Ident{node{pos: pos}, name}, nil
	default:
		return nil, p.errf("unexpected token %q", p.cur.Text)
	}
}

func (p *Parser) parseArrayOrDictLit(pos Pos) (Expr, error) {
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	if p.at(TokColon) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket, "']'"); err != nil {
			return nil, err
		}
		return &DictLit{node: node{pos: pos}}, nil
	}
	if p.at(TokRBracket) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ArrayLit{node: node{pos: pos}}, nil
	}
	saved := p.suppressStructLit
	p.suppressStructLit = 0
	first, err := p.parseExpr()
	if err != nil {
		p.suppressStructLit = saved
		return nil, err
	}
	if p.at(TokColon) {
		if err := p.advance(); err != nil {
			p.suppressStructLit = saved
			return nil, err
		}
		firstVal, err := p.parseExpr()
		if err != nil {
			p.suppressStructLit = saved
			return nil, err
		}
		keys := []Expr{first}
		values := []Expr{firstVal}
		for p.at(TokComma) {
			if err := p.advance(); err != nil {
				p.suppressStructLit = saved
				return nil, err
			}
			k, err := p.parseExpr()
			if err != nil {
				p.suppressStructLit = saved
				return nil, err
			}
			if _, err := p.expect(TokColon, "':'"); err != nil {
				p.suppressStructLit = saved
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				p.suppressStructLit = saved
				return nil, err
			}
			keys = append(keys, k)
			values = append(values, v)
		}
		p.suppressStructLit = saved
		if _, err := p.expect(TokRBracket, "']'"); err != nil {
			return nil, err
		}
		return &DictLit{node{pos: pos}, keys, values}, nil
	}
	elems := []Expr{first}
	for p.at(TokComma) {
		if err := p.advance(); err != nil {
			p.suppressStructLit = saved
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			p.suppressStructLit = saved
			return nil, err
		}
		elems = append(elems, e)
	}
	p.suppressStructLit = saved
	if _, err := p.expect(TokRBracket, "']'"); err != nil {
		return nil, err
	}
	return &ArrayLit{node{pos: pos}, elems}, nil
}

func (p *Parser) parseStructLit(pos Pos, typeName string) (Expr, error) {
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	var names []string
	var values []Expr
	for !p.at(TokRBrace) {
		if len(names) > 0 {
			if _, err := p.expect(TokComma, "','"); err != nil {
				return nil, err
			}
		}
		fname, err := p.expect(TokIdent, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon, "':'"); err != nil {
			return nil, err
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		names = append(names, fname.Text)
		values = append(values, v)
	}
	if _, err := p.expect(TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return &StructLit{node{pos: pos}, typeName, names, values}, nil
}
