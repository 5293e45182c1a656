package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/demoday/arbiter/internal/adapters/repository"
	"github.com/demoday/arbiter/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newStore(t *testing.T) *repository.SqliteStore {
	t.Helper()
	store, err := repository.NewSqliteStore("", nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedSubmission(store *repository.SqliteStore, id string, status model.Status) model.Submission {
	sub := model.Submission{ID: id, Name: "project " + id, Category: "defi", Status: status}
	_ = store.CreateSubmission(context.Background(), sub)
	return sub
}

func TestSubmissions(t *testing.T) {
	Convey("Given an empty store", t, func() {
		store := newStore(t)
		ctx := context.Background()

		Convey("Create then Get round-trips", func() {
			sub := model.Submission{ID: "s1", Name: "demo", Category: "ai", Status: model.StatusSubmitted}
			So(store.CreateSubmission(ctx, sub), ShouldBeNil)

			got, err := store.GetSubmission(ctx, "s1")
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "demo")
			So(got.Status, ShouldEqual, model.StatusSubmitted)
			So(got.FinalScore, ShouldBeNil)
		})

		Convey("Duplicate ids fail with ErrDuplicate", func() {
			seedSubmission(store, "s1", model.StatusSubmitted)
			err := store.CreateSubmission(ctx, model.Submission{ID: "s1", Name: "again", Status: model.StatusSubmitted})
			So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
		})

		Convey("Unknown ids fail with ErrNotFound", func() {
			_, err := store.GetSubmission(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("List filters by status and category", func() {
			seedSubmission(store, "a", model.StatusSubmitted)
			seedSubmission(store, "b", model.StatusScored)
			_ = store.CreateSubmission(ctx, model.Submission{ID: "c", Name: "c", Category: "gaming", Status: model.StatusScored})

			all, err := store.ListSubmissions(ctx, "", "")
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 3)

			scored, err := store.ListSubmissions(ctx, model.StatusScored, "")
			So(err, ShouldBeNil)
			So(scored, ShouldHaveLength, 2)

			gaming, err := store.ListSubmissions(ctx, model.StatusScored, "gaming")
			So(err, ShouldBeNil)
			So(gaming, ShouldHaveLength, 1)
			So(gaming[0].ID, ShouldEqual, "c")
		})

		Convey("Conditional status updates", func() {
			seedSubmission(store, "s1", model.StatusSubmitted)

			Convey("Succeed when the precondition holds", func() {
				err := store.UpdateSubmissionStatus(ctx, "s1", model.StatusSubmitted, model.StatusResearched, nil)
				So(err, ShouldBeNil)
				got, _ := store.GetSubmission(ctx, "s1")
				So(got.Status, ShouldEqual, model.StatusResearched)
			})

			Convey("Fail with ErrConflict when the stored status moved on", func() {
				err := store.UpdateSubmissionStatus(ctx, "s1", model.StatusResearched, model.StatusScored, nil)
				So(errors.Is(err, repository.ErrConflict), ShouldBeTrue)
				got, _ := store.GetSubmission(ctx, "s1")
				So(got.Status, ShouldEqual, model.StatusSubmitted)
			})

			Convey("Fail with ErrNotFound for unknown submissions", func() {
				err := store.UpdateSubmissionStatus(ctx, "ghost", model.StatusSubmitted, model.StatusResearched, nil)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Can set the final score alongside the status", func() {
				score := 37.75
				err := store.UpdateSubmissionStatus(ctx, "s1", model.StatusSubmitted, model.StatusResearched, &score)
				So(err, ShouldBeNil)
				got, _ := store.GetSubmission(ctx, "s1")
				So(got.FinalScore, ShouldNotBeNil)
				So(*got.FinalScore, ShouldEqual, 37.75)
			})
		})
	})
}

func TestJudgeScores(t *testing.T) {
	Convey("Given a store with a submission", t, func() {
		store := newStore(t)
		ctx := context.Background()
		seedSubmission(store, "s1", model.StatusResearched)

		rows := []model.JudgeScore{
			{SubmissionID: "s1", JudgeID: "alpha", Round: 1, Innovation: 8, WeightedTotal: 7.4},
			{SubmissionID: "s1", JudgeID: "beta", Round: 1, Innovation: 6, WeightedTotal: 6.0},
		}

		Convey("Insert then list round-trips", func() {
			So(store.InsertJudgeScores(ctx, rows), ShouldBeNil)
			got, err := store.ListJudgeScores(ctx, "s1", 1)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 2)
			So(got[0].JudgeID, ShouldEqual, "alpha")
			So(got[1].JudgeID, ShouldEqual, "beta")
		})

		Convey("A second insert for the same (submission, judge, round) fails", func() {
			So(store.InsertJudgeScores(ctx, rows), ShouldBeNil)
			err := store.InsertJudgeScores(ctx, []model.JudgeScore{
				{SubmissionID: "s1", JudgeID: "alpha", Round: 1, WeightedTotal: 9.9},
			})
			So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
		})

		Convey("Rounds are separate keys", func() {
			So(store.InsertJudgeScores(ctx, rows), ShouldBeNil)
			So(store.InsertJudgeScores(ctx, []model.JudgeScore{
				{SubmissionID: "s1", JudgeID: "alpha", Round: 2, WeightedTotal: 7.4, Verdict: "solid"},
			}), ShouldBeNil)
			r2, err := store.ListJudgeScores(ctx, "s1", 2)
			So(err, ShouldBeNil)
			So(r2, ShouldHaveLength, 1)
			So(r2[0].Verdict, ShouldEqual, "solid")
		})
	})
}

func TestVoteLedger(t *testing.T) {
	Convey("Given a store with a voting submission", t, func() {
		store := newStore(t)
		ctx := context.Background()
		seedSubmission(store, "s1", model.StatusCommunityVoting)
		ts := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

		Convey("A token vote with overflow lands atomically", func() {
			entry := model.NewTokenVote("sig-1", "s1", "w2", "mint", 150, 100, ts)
			overflow := model.NewOverflowContribution("sig-1", "s1", "w2", "mint", 50, ts)

			inserted, err := store.InsertVote(ctx, entry, &overflow)
			So(err, ShouldBeNil)
			So(inserted, ShouldBeTrue)

			votes, err := store.ListVotes(ctx, "s1")
			So(err, ShouldBeNil)
			So(votes, ShouldHaveLength, 1)
			So(votes[0].Amount, ShouldEqual, 150)
			So(votes[0].VoteTokens, ShouldEqual, 100)

			contribs, err := store.ListContributions(ctx, "s1")
			So(err, ShouldBeNil)
			So(contribs, ShouldHaveLength, 1)
			So(contribs[0].ID, ShouldEqual, "sig-1_overflow")
			So(contribs[0].Amount, ShouldEqual, 50)

			Convey("Redelivery of the same signature changes nothing", func() {
				inserted, err := store.InsertVote(ctx, entry, &overflow)
				So(err, ShouldBeNil)
				So(inserted, ShouldBeFalse)

				votes, _ := store.ListVotes(ctx, "s1")
				So(votes, ShouldHaveLength, 1)
				contribs, _ := store.ListContributions(ctx, "s1")
				So(contribs, ShouldHaveLength, 1)
			})
		})

		Convey("Reaction votes dedupe on (voter, reaction, submission)", func() {
			first := model.NewReactionVote("s1", "fire", "u1", ts)
			inserted, err := store.InsertVote(ctx, first, nil)
			So(err, ShouldBeNil)
			So(inserted, ShouldBeTrue)

			inserted, err = store.InsertVote(ctx, model.NewReactionVote("s1", "fire", "u1", ts), nil)
			So(err, ShouldBeNil)
			So(inserted, ShouldBeFalse)

			inserted, err = store.InsertVote(ctx, model.NewReactionVote("s1", "rocket", "u1", ts), nil)
			So(err, ShouldBeNil)
			So(inserted, ShouldBeTrue)

			votes, _ := store.ListVotes(ctx, "s1")
			So(votes, ShouldHaveLength, 2)
		})

		Convey("ListAllVotes spans submissions", func() {
			seedSubmission(store, "s2", model.StatusCommunityVoting)
			_, _ = store.InsertVote(ctx, model.NewReactionVote("s1", "fire", "u1", ts), nil)
			_, _ = store.InsertVote(ctx, model.NewReactionVote("s2", "fire", "u1", ts), nil)

			all, err := store.ListAllVotes(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 2)
		})
	})
}

func TestPrizePool(t *testing.T) {
	Convey("Given a store", t, func() {
		store := newStore(t)
		ctx := context.Background()
		ts := time.Now()

		Convey("Contributions insert once per id", func() {
			c := model.PrizePoolContribution{
				ID: "don-1", TokenMint: "mint", Amount: 500,
				Contributor: "w9", Source: model.SourceDirectDonation, Timestamp: ts,
			}
			inserted, err := store.InsertContribution(ctx, c)
			So(err, ShouldBeNil)
			So(inserted, ShouldBeTrue)

			inserted, err = store.InsertContribution(ctx, c)
			So(err, ShouldBeNil)
			So(inserted, ShouldBeFalse)
		})

		Convey("Summaries group by source and mint", func() {
			_, _ = store.InsertContribution(ctx, model.PrizePoolContribution{
				ID: "don-1", TokenMint: "mint", Amount: 500, Source: model.SourceDirectDonation, Timestamp: ts,
			})
			_, _ = store.InsertContribution(ctx, model.PrizePoolContribution{
				ID: "don-2", TokenMint: "mint", Amount: 250, Source: model.SourceDirectDonation, Timestamp: ts,
			})
			_, _ = store.InsertContribution(ctx, model.PrizePoolContribution{
				ID: "sig-1_overflow", TokenMint: "mint", Amount: 50, Source: model.SourceVoteOverflow, Timestamp: ts,
			})

			summary, err := store.SummarizeContributions(ctx)
			So(err, ShouldBeNil)
			So(summary, ShouldHaveLength, 2)

			totals := map[model.ContributionSource]float64{}
			for _, row := range summary {
				totals[row.Source] = row.Total
			}
			So(totals[model.SourceDirectDonation], ShouldEqual, 750)
			So(totals[model.SourceVoteOverflow], ShouldEqual, 50)
		})
	})
}

func TestCommitRound2(t *testing.T) {
	Convey("Given a submission in community-voting", t, func() {
		store := newStore(t)
		ctx := context.Background()
		seedSubmission(store, "s1", model.StatusCommunityVoting)

		scores := []model.JudgeScore{
			{SubmissionID: "s1", JudgeID: "alpha", Round: 2, WeightedTotal: 7.4, Verdict: "good", CommunityBonusApplied: 4.25},
		}

		Convey("The commit writes scores and the final status atomically", func() {
			So(store.CommitRound2(ctx, "s1", model.StatusCommunityVoting, 37.75, scores), ShouldBeNil)

			got, _ := store.GetSubmission(ctx, "s1")
			So(got.Status, ShouldEqual, model.StatusCompleted)
			So(*got.FinalScore, ShouldEqual, 37.75)

			r2, _ := store.ListJudgeScores(ctx, "s1", 2)
			So(r2, ShouldHaveLength, 1)
		})

		Convey("A stale precondition rolls everything back", func() {
			err := store.CommitRound2(ctx, "s1", model.StatusScored, 37.75, scores)
			So(errors.Is(err, repository.ErrConflict), ShouldBeTrue)

			got, _ := store.GetSubmission(ctx, "s1")
			So(got.Status, ShouldEqual, model.StatusCommunityVoting)
			So(got.FinalScore, ShouldBeNil)

			r2, _ := store.ListJudgeScores(ctx, "s1", 2)
			So(r2, ShouldBeEmpty)
		})

		Convey("Re-committing round 2 fails with ErrDuplicate or ErrConflict", func() {
			So(store.CommitRound2(ctx, "s1", model.StatusCommunityVoting, 37.75, scores), ShouldBeNil)
			again := []model.JudgeScore{
				{SubmissionID: "s1", JudgeID: "alpha", Round: 2, WeightedTotal: 7.4},
			}
			err := store.CommitRound2(ctx, "s1", model.StatusCommunityVoting, 37.75, again)
			So(err, ShouldNotBeNil)
		})
	})
}
