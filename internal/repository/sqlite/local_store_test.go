package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/repository/sqlite"
	"github.com/vocabuddy/progress/internal/testutil"
)

type LocalStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store repository.LocalStore
}

func (s *LocalStoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewLocalStore(s.db)
}

func (s *LocalStoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *LocalStoreSuite) TestGetMissing() {
	value, found, err := s.store.Get(context.Background(), "words")
	s.Require().NoError(err)
	s.Assert().False(found)
	s.Assert().Nil(value)
}

func (s *LocalStoreSuite) TestSetThenGet() {
	ctx := context.Background()

	s.Require().NoError(s.store.Set(ctx, "words", []byte(`{"a":1}`)))

	value, found, err := s.store.Get(ctx, "words")
	s.Require().NoError(err)
	s.Assert().True(found)
	s.Assert().JSONEq(`{"a":1}`, string(value))
}

func (s *LocalStoreSuite) TestSetOverwrites() {
	ctx := context.Background()

	s.Require().NoError(s.store.Set(ctx, "profile", []byte(`1`)))
	s.Require().NoError(s.store.Set(ctx, "profile", []byte(`2`)))

	value, _, err := s.store.Get(ctx, "profile")
	s.Require().NoError(err)
	s.Assert().Equal("2", string(value))

	names, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"profile"}, names)
}

func (s *LocalStoreSuite) TestDeleteAndList() {
	ctx := context.Background()

	s.Require().NoError(s.store.Set(ctx, "words", []byte(`[]`)))
	s.Require().NoError(s.store.Set(ctx, "calendar", []byte(`[]`)))

	names, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"calendar", "words"}, names)

	s.Require().NoError(s.store.Delete(ctx, "words"))

	_, found, err := s.store.Get(ctx, "words")
	s.Require().NoError(err)
	s.Assert().False(found)
}

func TestLocalStoreSuite(t *testing.T) {
	suite.Run(t, new(LocalStoreSuite))
}
