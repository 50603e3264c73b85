package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("message wins over code", func() {
		err := &Error{Code: CodeNotFound, Message: "lease not found"}
		s.Equal("lease not found", err.Error())
	})

	s.Run("code when message is empty", func() {
		err := &Error{Code: CodeConflict}
		s.Equal("conflict", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	inner := &Error{Code: CodeNotFound, Message: "key system not found"}
	wrapped := fmt.Errorf("get key system: %w", inner)

	s.True(errors.Is(wrapped, &Error{Code: CodeNotFound}))
	s.False(errors.Is(wrapped, &Error{Code: CodeForbidden}))
	s.False(inner.Is(errors.New("not_found")))
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps code of wrapped domain error", func() {
		wrapped := Wrap(New(CodeForbidden, "upstream refused"), CodeInternal, "update key failed")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeForbidden, domainErr.Code)
		s.Equal("update key failed", domainErr.Message)
	})

	s.Run("uses given code for plain errors", func() {
		root := errors.New("connection reset")
		wrapped := Wrap(root, CodeBadGateway, "leasing unavailable")

		s.True(HasCode(wrapped, CodeBadGateway))
		s.True(errors.Is(wrapped, root))
	})
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeRateLimited, CodeOf(New(CodeRateLimited, "slow down")))
	s.Equal(CodeInternal, CodeOf(errors.New("boom")))
	s.Equal(CodeInternal, CodeOf(nil))
	s.False(HasCode(nil, CodeNotFound))
}
