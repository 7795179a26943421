package aggregate

import "sort"

// Graph is the joined view of all five collections for one aggregation.
// Child records are bucketed by parent game in one linear pass per
// collection; no per-parent queries are ever issued.
type Graph struct {
	Games          []Game
	PostsByGame    map[string][]Post
	PlaysByGame    map[string][]Play
	FeedbackByGame map[string][]Feedback
	UsersByID      map[string]UserAccount
}

// feedbackKey is the composite join key for feedback records, which carry
// no direct game id.
func feedbackKey(ownerIdentity, gameName string) string {
	return ownerIdentity + "|" + gameName
}

// buildGraph stitches the fetched collections together. Unusable games are
// dropped. A child with a multi-valued game reference lands in every bucket
// it names. Buckets are ordered newest-first with stable ties, missing
// timestamps sorting as epoch zero.
func buildGraph(games []Game, posts []Post, plays []Play, feedback []Feedback, users []UserAccount) *Graph {
	g := &Graph{
		PostsByGame:    make(map[string][]Post),
		PlaysByGame:    make(map[string][]Play),
		FeedbackByGame: make(map[string][]Feedback),
		UsersByID:      make(map[string]UserAccount, len(users)),
	}

	for _, game := range games {
		if !game.Usable() {
			continue
		}
		g.Games = append(g.Games, game)
	}

	for _, post := range posts {
		for _, gameID := range post.GameIDs {
			g.PostsByGame[gameID] = append(g.PostsByGame[gameID], post)
		}
	}
	for _, play := range plays {
		for _, gameID := range play.GameIDs {
			g.PlaysByGame[gameID] = append(g.PlaysByGame[gameID], play)
		}
	}
	for _, fb := range feedback {
		if fb.GameOwner == "" || fb.GameName == "" {
			continue
		}
		key := feedbackKey(fb.GameOwner, fb.GameName)
		g.FeedbackByGame[key] = append(g.FeedbackByGame[key], fb)
	}
	for _, user := range users {
		g.UsersByID[user.ID] = user
	}

	for gameID := range g.PostsByGame {
		bucket := g.PostsByGame[gameID]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Created.After(bucket[j].Created)
		})
	}
	for gameID := range g.PlaysByGame {
		bucket := g.PlaysByGame[gameID]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Created.After(bucket[j].Created)
		})
	}
	for key := range g.FeedbackByGame {
		bucket := g.FeedbackByGame[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Created.After(bucket[j].Created)
		})
	}

	return g
}

// creatorIdentities returns the distinct owner identity keys of the graph's
// games, in first-seen order.
func (g *Graph) creatorIdentities() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, game := range g.Games {
		if _, ok := seen[game.OwnerIdentity]; ok {
			continue
		}
		seen[game.OwnerIdentity] = struct{}{}
		out = append(out, game.OwnerIdentity)
	}
	return out
}

// playerIdentities resolves the player references of every play bucket to
// external identity keys through the users collection.
func (g *Graph) playerIdentities() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, game := range g.Games {
		for _, play := range g.PlaysByGame[game.ID] {
			user, ok := g.UsersByID[play.PlayerID]
			if !ok || user.IdentityKey == "" {
				continue
			}
			if _, dup := seen[user.IdentityKey]; dup {
				continue
			}
			seen[user.IdentityKey] = struct{}{}
			out = append(out, user.IdentityKey)
		}
	}
	return out
}
