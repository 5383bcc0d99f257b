// Package youtube exposes the YouTube Data API v3 resources on top of the
// lazy pagination engine.
//
// Every listing method returns a *pagination.Sequence of typed records. No
// request is made until the sequence is consumed, and single-record lookups
// (Channel, Video, MyChannel) consume exactly one element.
//
//	yt := youtube.New(apiClient)
//	videos, err := yt.PlaylistVideos("PL...", youtube.PartSnippet|youtube.PartContentDetails,
//		pagination.WithLimit(20))
//	if err != nil {
//		return err
//	}
//	for v, err := range videos.All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(v.Title, v.Duration)
//	}
package youtube
