package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper turns an application error into a problem, reporting whether it matched.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Rule pairs a sentinel error with the problem template it is reported as.
type Rule struct {
	Target  error
	Problem ProblemDetail
}

// When is shorthand for a Rule.
func When(target error, problem ProblemDetail) Rule {
	return Rule{Target: target, Problem: problem}
}

// Sentinels maps the first rule whose target is in the error chain. The
// error text becomes the problem detail.
func Sentinels(rules ...Rule) ErrorMapper {
	return func(err error) (ProblemDetail, bool) {
		for _, rule := range rules {
			if errors.Is(err, rule.Target) {
				return rule.Problem.WithDetail(err.Error()), true
			}
		}
		return ProblemDetail{}, false
	}
}

// ConflictRedirect reports target as a Conflict that sends the client to
// redirect, typically after losing a listing to another buyer.
func ConflictRedirect(target error, redirect string) ErrorMapper {
	return func(err error) (ProblemDetail, bool) {
		if !errors.Is(err, target) {
			return ProblemDetail{}, false
		}
		return NewConflictProblem(err.Error(), redirect), true
	}
}

// ChainedResponder writes Problem Details, trying each mapper in order.
// Errors no mapper recognises become a 500 without leaking their text.
type ChainedResponder struct {
	// BaseURI is prepended to relative problem type URIs.
	BaseURI string
	mappers []ErrorMapper
}

func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{BaseURI: baseURI, mappers: mappers}
}

// Respond writes problem, defaulting its instance to the request path.
func (r *ChainedResponder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	r.Respond(c, r.Problem(err))
}

// Problem resolves err without writing it.
func (r *ChainedResponder) Problem(err error) ProblemDetail {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			return problem
		}
	}
	return ErrInternal
}
