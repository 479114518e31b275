// Package parser turns query text into an ast.Query: parse(query) ->
// (AST, residual_params, semantic_state). Results are memoized by exact
// query text in a bounded LRU (see cache.go).
package parser

import (
	"fmt"
	"strconv"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
)

// SemanticState carries scoping information discovered while parsing:
// which variables are bound, and (where inferable) their static type.
// Consulted by the logical planner for variable scoping.
type SemanticState struct {
	VariableTypes map[ast.Symbol]cyphergraph.Type
}

func newSemanticState() *SemanticState {
	return &SemanticState{VariableTypes: make(map[ast.Symbol]cyphergraph.Type)}
}

func (s *SemanticState) bind(name ast.Symbol, t cyphergraph.Type) {
	if name == "" {
		return
	}
	s.VariableTypes[name] = t
}

// Parse tokenizes and parses query text, returning the AST, the constant
// values lifted out during parameterization (residual params), and the
// semantic state discovered along the way. Malformed input returns a
// *cyphergraph.ParsingError and no partial AST.
func Parse(query string) (*ast.Query, map[string]cyphergraph.Value, *SemanticState, error) {
	lex := newLexer(query)
	tokens, err := lex.lexAll()
	if err != nil {
		return nil, nil, nil, err
	}

	p := &parser{
		tokens:    tokens,
		query:     query,
		residuals: make(map[string]cyphergraph.Value),
		semantic:  newSemanticState(),
	}

	q, err := p.parseQuery()
	if err != nil {
		return nil, nil, nil, err
	}
	return q, p.residuals, p.semantic, nil
}

type parser struct {
	tokens          []Token
	pos             int
	query           string
	residuals       map[string]cyphergraph.Value
	residualCounter int
	paramNames      []string
	semantic        *SemanticState
}

func (p *parser) peek() Token  { return p.tokens[p.pos] }
func (p *parser) atEOF() bool  { return p.peek().Type == TokenEOF }
func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) errf(format string, args ...interface{}) error {
	return &cyphergraph.ParsingError{
		Query:   p.query,
		Offset:  p.peek().Pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) expect(tt TokenType) (Token, error) {
	if p.peek().Type != tt {
		return Token{}, p.errf("unexpected token %q", p.peek().Value)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(kw string) error {
	tok := p.peek()
	if tok.Type != TokenKeyword || tok.Value != kw {
		return p.errf("expected %s, got %q", kw, tok.Value)
	}
	p.advance()
	return nil
}

func (p *parser) atKeyword(kw string) bool {
	tok := p.peek()
	return tok.Type == TokenKeyword && tok.Value == kw
}

// literal registers a constant as a residual parameter and returns a
// reference to it, so the AST never embeds raw literal values directly:
// constants are extracted during parameterization just like explicit
// parameters, keeping the cached AST shape parameter-driven.
func (p *parser) literal(v cyphergraph.Value) ast.Expression {
	name := fmt.Sprintf("__const%d", p.residualCounter)
	p.residualCounter++
	p.residuals[name] = v
	return ast.Parameter{Name: name}
}

func (p *parser) parseQuery() (*ast.Query, error) {
	q := &ast.Query{}
	for !p.atEOF() {
		clause, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, clause)
	}
	if len(q.Clauses) == 0 {
		return nil, p.errf("empty query")
	}
	q.ParameterNames = p.paramNames
	return q, nil
}

func (p *parser) parseClause() (ast.Clause, error) {
	switch {
	case p.atKeyword("OPTIONAL"):
		p.advance()
		if err := p.expectKeyword("MATCH"); err != nil {
			return nil, err
		}
		return p.parseMatchBody(true)
	case p.atKeyword("MATCH"):
		p.advance()
		return p.parseMatchBody(false)
	case p.atKeyword("CREATE"):
		p.advance()
		patterns, err := p.parsePatternList()
		if err != nil {
			return nil, err
		}
		return ast.CreateClause{Patterns: patterns}, nil
	case p.atKeyword("WITH"):
		p.advance()
		return p.parseWithBody()
	case p.atKeyword("RETURN"):
		p.advance()
		return p.parseReturnBody()
	case p.atKeyword("ORDER"):
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		return p.parseOrderByBody()
	case p.atKeyword("SKIP"):
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return ast.SkipClause{Count: expr}, nil
	case p.atKeyword("LIMIT"):
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return ast.LimitClause{Count: expr}, nil
	default:
		return nil, p.errf("expected a clause keyword, got %q", p.peek().Value)
	}
}

func (p *parser) parseMatchBody(optional bool) (ast.Clause, error) {
	patterns, err := p.parsePatternList()
	if err != nil {
		return nil, err
	}
	for _, pp := range patterns {
		for _, n := range pp.Nodes {
			p.semantic.bind(n.Variable, cyphergraph.TypeNode)
		}
		for _, r := range pp.Rels {
			p.semantic.bind(r.Variable, cyphergraph.TypeRelationship)
		}
		p.semantic.bind(pp.Variable, cyphergraph.TypePath)
	}

	var where ast.Expression
	if p.atKeyword("WHERE") {
		p.advance()
		where, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	return ast.MatchClause{Patterns: patterns, Where: where, Optional: optional}, nil
}

func (p *parser) parseWithBody() (ast.Clause, error) {
	distinct := false
	if p.atKeyword("DISTINCT") {
		p.advance()
		distinct = true
	}
	items, err := p.parseReturnItemList()
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.Alias != "" {
			p.semantic.bind(it.Alias, cyphergraph.TypeAny)
		}
	}
	var where ast.Expression
	if p.atKeyword("WHERE") {
		p.advance()
		where, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	return ast.WithClause{Items: items, Distinct: distinct, Where: where}, nil
}

func (p *parser) parseReturnBody() (ast.Clause, error) {
	distinct := false
	if p.atKeyword("DISTINCT") {
		p.advance()
		distinct = true
	}
	items, err := p.parseReturnItemList()
	if err != nil {
		return nil, err
	}
	return ast.ReturnClause{Items: items, Distinct: distinct}, nil
}

func (p *parser) parseReturnItemList() ([]ast.ReturnItem, error) {
	var items []ast.ReturnItem
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		var alias ast.Symbol
		if p.atKeyword("AS") {
			p.advance()
			ident, err := p.expect(TokenIdent)
			if err != nil {
				return nil, err
			}
			alias = ast.Symbol(ident.Value)
		}
		items = append(items, ast.ReturnItem{Expr: expr, Alias: alias})
		if p.peek().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	return items, nil
}

func (p *parser) parseOrderByBody() (ast.Clause, error) {
	var items []ast.OrderByItem
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		asc := true
		if p.atKeyword("DESC") || p.atKeyword("DESCENDING") {
			p.advance()
			asc = false
		} else if p.atKeyword("ASC") || p.atKeyword("ASCENDING") {
			p.advance()
		}
		items = append(items, ast.OrderByItem{Expr: expr, Ascending: asc})
		if p.peek().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	return ast.OrderByClause{Items: items}, nil
}

// --- Patterns ---

func (p *parser) parsePatternList() ([]ast.PathPattern, error) {
	var patterns []ast.PathPattern
	for {
		pp, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pp)
		if p.peek().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	return patterns, nil
}

func (p *parser) parsePattern() (ast.PathPattern, error) {
	var pathVar ast.Symbol
	if p.peek().Type == TokenIdent && p.tokens[p.pos+1].Type == TokenEQ {
		pathVar = ast.Symbol(p.advance().Value)
		p.advance() // '='
	}

	pp := ast.PathPattern{Variable: pathVar}

	node, err := p.parseNodePattern()
	if err != nil {
		return pp, err
	}
	pp.Nodes = append(pp.Nodes, node)

	for p.peek().Type == TokenDash || p.peek().Type == TokenArrowLeft {
		rel, err := p.parseRelPattern()
		if err != nil {
			return pp, err
		}
		pp.Rels = append(pp.Rels, rel)

		node, err := p.parseNodePattern()
		if err != nil {
			return pp, err
		}
		pp.Nodes = append(pp.Nodes, node)
	}

	return pp, nil
}

func (p *parser) parseNodePattern() (ast.NodePattern, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return ast.NodePattern{}, err
	}
	np := ast.NodePattern{}
	if p.peek().Type == TokenIdent {
		np.Variable = ast.Symbol(p.advance().Value)
	}
	for p.peek().Type == TokenColon {
		p.advance()
		label, err := p.expect(TokenIdent)
		if err != nil {
			return np, err
		}
		np.Labels = append(np.Labels, label.Value)
	}
	if p.peek().Type == TokenLBrace {
		props, err := p.parsePropertyMap()
		if err != nil {
			return np, err
		}
		np.Properties = props
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return np, err
	}
	return np, nil
}

// parseRelPattern parses one of: "-[...]->", "<-[...]-", "-[...]-".
func (p *parser) parseRelPattern() (ast.RelPattern, error) {
	rp := ast.RelPattern{Direction: cyphergraph.Both}

	leftArrow := false
	if p.peek().Type == TokenArrowLeft {
		p.advance()
		leftArrow = true
	} else {
		if _, err := p.expect(TokenDash); err != nil {
			return rp, err
		}
	}

	if p.peek().Type == TokenLBracket {
		p.advance()
		if p.peek().Type == TokenIdent {
			rp.Variable = ast.Symbol(p.advance().Value)
		}
		for p.peek().Type == TokenColon {
			p.advance()
			typ, err := p.expect(TokenIdent)
			if err != nil {
				return rp, err
			}
			rp.Types = append(rp.Types, typ.Value)
			// allow "|" style alternation written as repeated ":TYPE"
		}
		if p.peek().Type == TokenLBrace {
			props, err := p.parsePropertyMap()
			if err != nil {
				return rp, err
			}
			rp.Properties = props
		}
		if _, err := p.expect(TokenRBracket); err != nil {
			return rp, err
		}
	}

	switch p.peek().Type {
	case TokenArrowRight:
		p.advance()
		if leftArrow {
			return rp, p.errf("relationship pattern cannot point both directions")
		}
		rp.Direction = cyphergraph.Outgoing
	case TokenDash:
		p.advance()
		if leftArrow {
			rp.Direction = cyphergraph.Incoming
		} else {
			rp.Direction = cyphergraph.Both
		}
	default:
		return rp, p.errf("expected relationship pattern terminator, got %q", p.peek().Value)
	}

	return rp, nil
}

func (p *parser) parsePropertyMap() (map[string]ast.Expression, error) {
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}
	props := make(map[string]ast.Expression)
	for p.peek().Type != TokenRBrace {
		key, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		props[key.Value] = expr
		if p.peek().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}
	return props, nil
}

// --- Expressions (precedence climbing) ---

func (p *parser) parseExpression() (ast.Expression, error) { return p.parseOr() }

func (p *parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("OR") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("AND") {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Expression, error) {
	if p.atKeyword("NOT") {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.UnaryExpr{Op: ast.OpNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

var compareOps = map[TokenType]ast.BinaryOp{
	TokenEQ: ast.OpEQ, TokenNE: ast.OpNE, TokenLT: ast.OpLT,
	TokenLTE: ast.OpLTE, TokenGT: ast.OpGT, TokenGTE: ast.OpGTE,
}

func (p *parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if op, ok := compareOps[p.peek().Type]; ok {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return ast.BinaryExpr{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenPlus || p.peek().Type == TokenDash {
		op := ast.OpAdd
		if p.peek().Type == TokenDash {
			op = ast.OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenStar || p.peek().Type == TokenSlash || p.peek().Type == TokenPercent {
		var op ast.BinaryOp
		switch p.peek().Type {
		case TokenStar:
			op = ast.OpMul
		case TokenSlash:
			op = ast.OpDiv
		case TokenPercent:
			op = ast.OpMod
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expression, error) {
	if p.peek().Type == TokenDash {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryExpr{Op: ast.OpNeg, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenDot {
		p.advance()
		prop, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		expr = ast.PropertyAccess{Target: expr, Property: prop.Value}
	}
	return expr, nil
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenInteger:
		p.advance()
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, p.errf("invalid integer literal %q", tok.Value)
		}
		return p.literal(n), nil
	case TokenFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errf("invalid float literal %q", tok.Value)
		}
		return p.literal(f), nil
	case TokenString:
		p.advance()
		return p.literal(tok.Value), nil
	case TokenParameter:
		p.advance()
		p.paramNames = append(p.paramNames, tok.Value)
		return ast.Parameter{Name: tok.Value}, nil
	case TokenKeyword:
		switch tok.Value {
		case "TRUE":
			p.advance()
			return p.literal(true), nil
		case "FALSE":
			p.advance()
			return p.literal(false), nil
		case "NULL":
			p.advance()
			return p.literal(nil), nil
		}
	case TokenLParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case TokenLBracket:
		return p.parseListLiteral()
	case TokenIdent:
		return p.parseIdentExpr()
	}
	return nil, p.errf("unexpected token %q in expression", tok.Value)
}

func (p *parser) parseListLiteral() (ast.Expression, error) {
	if _, err := p.expect(TokenLBracket); err != nil {
		return nil, err
	}
	var elems []ast.Expression
	for p.peek().Type != TokenRBracket {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.peek().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}
	return ast.ListLiteral{Elements: elems}, nil
}

// parseIdentExpr parses a bare identifier, which is either a variable
// reference or a function call: "name(" args ")".
func (p *parser) parseIdentExpr() (ast.Expression, error) {
	first := p.advance().Value
	namespace := ""
	name := first
	if p.peek().Type == TokenDot && p.tokens[p.pos+1].Type == TokenIdent && p.tokens[p.pos+2].Type == TokenLParen {
		p.advance() // '.'
		name = p.advance().Value
		namespace = first
	}
	if p.peek().Type == TokenLParen {
		p.advance()
		var args []ast.Expression
		for p.peek().Type != TokenRParen {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Type == TokenComma {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return ast.FunctionCall{Namespace: namespace, Name: name, Args: args}, nil
	}
	return ast.VariableRef{Name: ast.Symbol(first)}, nil
}
