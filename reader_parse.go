package tinylisp

// readExpr implements the parser grammar from the component design:
// sexpr ::= atom | '(' list-body ')' | '[' sexpr* ']' | '{' (key value)* '}'
//         | quote-family sexpr | '#' reader-macro
// It returns (value, eof, err): eof is true only when the very first
// token of a top-level expression is end-of-input.
func (lx *lexer) readExpr() (Value, bool, error) {
	tok, atom, err := lx.nextToken()
	if err != nil {
		return nil, false, err
	}
	switch tok {
	case tIsAtom:
		return atom, false, nil
	case tOParen:
		list, err := lx.readLoop(tCParen)
		return list, false, err
	case tCParen:
		return nil, false, lx.syntaxErrorf("unexpected close paren")
	case tOBrace:
		items, err := lx.readLoop(tCBrace)
		if err != nil {
			return nil, false, err
		}
		m, merr := lx.in.NewMap(false)
		if merr != nil {
			return nil, false, merr
		}
		for items != lx.in.Nil {
			kp := items.(*Pair)
			vp, ok := kp.Cdr.(*Pair)
			if !ok {
				return nil, false, lx.syntaxErrorf("map key without a value")
			}
			m.Put(kp.Car, vp.Car)
			items = vp.Cdr
		}
		return m, false, nil
	case tCBrace:
		return nil, false, lx.syntaxErrorf("unexpected close brace")
	case tOBrack:
		elems, err := lx.readLoop(tCBrack)
		if err != nil {
			return nil, false, err
		}
		vec := lx.in.NewVector(0)
		for elems != lx.in.Nil {
			p := elems.(*Pair)
			vec.Elems = append(vec.Elems, p.Car)
			elems = p.Cdr
		}
		return vec, false, nil
	case tCBrack:
		return nil, false, lx.syntaxErrorf("unexpected close bracket")
	case tSQuote:
		return lx.doSpecial("quote")
	case tQQuote:
		return lx.doSpecial("quasiquote")
	case tUnquot:
		return lx.doSpecial("unquote")
	case tSplice:
		return lx.doSpecial("splice")
	case tPeriod:
		return nil, false, lx.syntaxErrorf("unexpected period")
	case tEndoff:
		return nil, true, nil
	case tRMacro:
		return lx.readerMacro()
	default:
		return nil, false, lx.syntaxErrorf("invalid token in parser")
	}
}

// doSpecial wraps the following expression as (name expr), used for
// the four quote-family reader macros.
func (lx *lexer) doSpecial(name string) (Value, bool, error) {
	arg, eof, err := lx.readExpr()
	if err != nil {
		return nil, false, err
	}
	if eof {
		return nil, false, lx.syntaxErrorf("unexpected eof")
	}
	return lx.in.List(lx.in.Intern(name), arg), false, nil
}

// readerMacro handles the single #-prefixed form this reader
// supports: #' expands to (function expr).
func (lx *lexer) readerMacro() (Value, bool, error) {
	tok, _, err := lx.nextToken()
	if err != nil {
		return nil, false, err
	}
	switch tok {
	case tSQuote:
		return lx.doSpecial("function")
	case tEndoff:
		return nil, false, lx.syntaxErrorf("unexpected eof")
	default:
		return nil, false, lx.syntaxErrorf("unknown reader macro")
	}
}

// readLoop collects sexprs up to endTok, matching proper- and
// improper-list bodies, and the pair-flattened bodies of maps and
// vectors (which reuse this same loop with a different terminator).
func (lx *lexer) readLoop(endTok tokenType) (Value, error) {
	var head, last Value = lx.in.Nil, lx.in.Nil
	for {
		tok, _, err := lx.nextToken()
		if err != nil {
			return nil, err
		}
		if tok == endTok {
			return head, nil
		}
		if tok == tEndoff {
			return nil, lx.syntaxErrorf("unexpected eof")
		}
		if tok == tPeriod {
			if endTok != tCParen || last == lx.in.Nil {
				return nil, lx.syntaxErrorf("unexpected period")
			}
			tail, eof, err := lx.readExpr()
			if err != nil {
				return nil, err
			}
			if eof {
				return nil, lx.syntaxErrorf("unexpected eof")
			}
			last.(*Pair).Cdr = tail
			closeTok, _, err := lx.nextToken()
			if err != nil {
				return nil, err
			}
			if closeTok != tCParen {
				return nil, lx.syntaxErrorf("expected close paren after dotted tail")
			}
			return head, nil
		}

		lx.pushback(tok)
		expr, eof, err := lx.readExpr()
		if err != nil {
			return nil, err
		}
		if eof {
			return nil, lx.syntaxErrorf("unexpected eof")
		}
		pair := lx.in.Cons(expr, lx.in.Nil)
		if head == lx.in.Nil {
			head = pair
		} else {
			last.(*Pair).Cdr = pair
		}
		last = pair
	}
}
