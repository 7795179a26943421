package aggregate

import "arcade/pkg/profile"

// BasicGame is the lightweight listing projection.
type BasicGame struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Description           string  `json:"description"`
	ThumbnailURL          string  `json:"thumbnailUrl"`
	AnimatedBackgroundURL string  `json:"animatedBackgroundUrl"`
	PlayableURL           string  `json:"playableUrl"`
	PlayID                string  `json:"playId"`
	LastUpdated           string  `json:"lastUpdated"`
	OwnerIdentity         string  `json:"ownerIdentity"`
	CreatorDisplayName    string  `json:"creatorDisplayName"`
	CreatorImage          string  `json:"creatorImage"`
	HoursSpent            float64 `json:"hoursSpent"`
}

// FullGame is the expensive projection: the basic fields plus the game's
// joined children and aggregate scores.
type FullGame struct {
	BasicGame
	Posts          []PostView     `json:"posts"`
	Plays          []PlayerView   `json:"plays"`
	PlaysCount     int            `json:"playsCount"`
	Feedback       []FeedbackView `json:"feedback"`
	FeedbackCount  int            `json:"feedbackCount"`
	AverageScores  AverageScores  `json:"averageScores"`
	NumberComplete int            `json:"numberComplete"`
}

type AverageScores struct {
	Fun        float64 `json:"fun"`
	Art        float64 `json:"art"`
	Creativity float64 `json:"creativity"`
	Audio      float64 `json:"audio"`
	Mood       float64 `json:"mood"`
}

type PostView struct {
	ID               string       `json:"id"`
	Content          string       `json:"content"`
	CreatedAt        string       `json:"createdAt"`
	Attachments      []Attachment `json:"attachments"`
	PostType         string       `json:"postType"`
	PlayLink         string       `json:"playLink"`
	TimelapseVideoID string       `json:"timelapseVideoId"`
	GithubImageLink  string       `json:"githubImageLink"`
	TimeSpentOnAsset float64      `json:"timeSpentOnAsset"`
	HoursSpent       float64      `json:"hoursSpent"`
	Badges           []string     `json:"badges"`
}

type PlayerView struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	Image       string `json:"image"`
}

type FeedbackView struct {
	ID             string `json:"id"`
	Message        string `json:"message"`
	StarRanking    int    `json:"starRanking"`
	CreatedAt      string `json:"createdAt"`
	PlayerIdentity string `json:"playerIdentity"`
	GameName       string `json:"gameName"`
	GameOwner      string `json:"gameOwner"`
}

// basicView projects one game into its lightweight shape.
func basicView(g Game, profiles map[string]profile.Profile) BasicGame {
	creator := profiles[g.OwnerIdentity]
	return BasicGame{
		ID:                    g.ID,
		Name:                  g.Name,
		Description:           g.Description,
		ThumbnailURL:          g.ThumbnailURL,
		AnimatedBackgroundURL: g.AnimatedBackgroundURL,
		PlayableURL:           g.PlayableURL,
		PlayID:                DerivePlayID(g.PlayableURL),
		LastUpdated:           g.LastUpdated,
		OwnerIdentity:         g.OwnerIdentity,
		CreatorDisplayName:    creator.DisplayName,
		CreatorImage:          creator.Image,
		HoursSpent:            g.HoursSpent,
	}
}

// fullView projects one game with its joined children. Both projections
// share basicView so their common fields cannot diverge.
func fullView(graph *Graph, g Game, profiles map[string]profile.Profile) FullGame {
	postBucket := graph.PostsByGame[g.ID]
	posts := make([]PostView, 0, len(postBucket))
	for _, post := range postBucket {
		posts = append(posts, postView(post))
	}

	playBucket := graph.PlaysByGame[g.ID]
	players := make([]PlayerView, 0, len(playBucket))
	seen := make(map[string]struct{})
	for _, play := range playBucket {
		user, ok := graph.UsersByID[play.PlayerID]
		if !ok || user.IdentityKey == "" {
			continue
		}
		if _, dup := seen[user.IdentityKey]; dup {
			continue
		}
		seen[user.IdentityKey] = struct{}{}
		p := profiles[user.IdentityKey]
		players = append(players, PlayerView{
			Identity:    user.IdentityKey,
			DisplayName: p.DisplayName,
			Image:       p.Image,
		})
	}

	fbBucket := graph.FeedbackByGame[feedbackKey(g.OwnerIdentity, g.Name)]
	feedback := make([]FeedbackView, 0, len(fbBucket))
	for _, fb := range fbBucket {
		feedback = append(feedback, FeedbackView{
			ID:             fb.ID,
			Message:        fb.Message,
			StarRanking:    fb.StarRanking,
			CreatedAt:      fb.CreatedAt,
			PlayerIdentity: fb.PlayerIdentity,
			GameName:       fb.GameName,
			GameOwner:      fb.GameOwner,
		})
	}

	return FullGame{
		BasicGame:     basicView(g, profiles),
		Posts:         posts,
		Plays:         players,
		PlaysCount:    len(playBucket),
		Feedback:      feedback,
		FeedbackCount: len(feedback),
		AverageScores: AverageScores{
			Fun:        g.FunScore,
			Art:        g.ArtScore,
			Creativity: g.CreativityScore,
			Audio:      g.AudioScore,
			Mood:       g.MoodScore,
		},
		NumberComplete: g.NumberComplete,
	}
}

func postView(p Post) PostView {
	attachments := p.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}
	badges := p.Badges
	if badges == nil {
		badges = []string{}
	}
	return PostView{
		ID:               p.ID,
		Content:          p.Content,
		CreatedAt:        p.CreatedAt,
		Attachments:      attachments,
		PostType:         p.PostType,
		PlayLink:         p.PlayLink,
		TimelapseVideoID: p.TimelapseVideoID,
		GithubImageLink:  p.GithubImageLink,
		TimeSpentOnAsset: p.TimeSpentOnAsset,
		HoursSpent:       p.HoursSpent,
		Badges:           badges,
	}
}
