package sitedata

// LocalizedPublication is a publication flattened into display form: author
// names formatted for the entry's locale, the venue collapsed to one label,
// and the issued date expanded to year and month.
type LocalizedPublication struct {
	ID       int
	Type     string
	Locale   string
	Title    string
	Author   []string
	Abstract string
	URL      string
	DOI      string
	Award    string

	Container string
	Year      int
	Month     int
}

// Publications groups the catalog by venue class, preserving source order.
type Publications struct {
	JournalPaper                    []LocalizedPublication
	RefereedInternationalConference []LocalizedPublication
	InternationalConference         []LocalizedPublication
	DomesticWorkshop                []LocalizedPublication
}

// SocialLink is one external account, keyed by platform.
type SocialLink struct {
	Key string
	URL string
}

// LocalizedPortfolio is a portfolio item with its description picked for the
// requested locale.
type LocalizedPortfolio struct {
	Title       string
	Category    string
	Description string
	URL         string
}

// LocalizedProfile is the profile view for one locale.
type LocalizedProfile struct {
	Name        string
	Bio         string
	Focus       string
	Base        string
	Email       string
	Avatar      string
	Socials     []SocialLink
	Educations  []Affiliation
	Experiences []Affiliation
	Portfolios  []LocalizedPortfolio
}

// LocalizedSite is the site identity view for one locale.
type LocalizedSite struct {
	Title       string
	Description string
	Copyright   string
}

// SiteData is the fully resolved, per-locale view over info.json and the
// changelog that the rendering layer consumes.
type SiteData struct {
	Profile      LocalizedProfile
	Publications Publications
	Changelog    []ChangelogEntry
	Site         LocalizedSite
}

// Localize builds the per-locale site data view. Unknown locales fall back to
// the English strings.
func Localize(info *Info, changelog *Changelog, locale string) SiteData {
	ja := locale == LocaleJA
	pick := func(jaValue, enValue string) string {
		if ja {
			return jaValue
		}
		return enValue
	}

	socials := make([]SocialLink, 0, 5)
	appendSocial := func(key, url string) {
		if url != "" {
			socials = append(socials, SocialLink{Key: key, URL: url})
		}
	}
	appendSocial("keybase", info.Profile.Social.Keybase)
	appendSocial("orcid", info.Profile.Social.ORCID)
	appendSocial("github", info.Profile.Social.GitHub)
	appendSocial("bluesky", info.Profile.Social.Bluesky)
	appendSocial("x", info.Profile.Social.X)

	portfolios := make([]LocalizedPortfolio, 0, len(info.Profile.Portfolio))
	for _, item := range info.Profile.Portfolio {
		portfolios = append(portfolios, LocalizedPortfolio{
			Title:       item.Title,
			Category:    item.Category,
			Description: pick(item.DescriptionJA, item.DescriptionEN),
			URL:         item.URL,
		})
	}

	var entries []ChangelogEntry
	if changelog != nil {
		entries = changelog.Versions
	}

	return SiteData{
		Profile: LocalizedProfile{
			Name:        pick(info.Profile.NameJA, info.Profile.NameEN),
			Bio:         pick(info.Profile.BioJA, info.Profile.BioEN),
			Focus:       pick(info.Profile.FocusJA, info.Profile.FocusEN),
			Base:        pick(info.Profile.BaseJA, info.Profile.BaseEN),
			Email:       info.Profile.Email,
			Avatar:      info.Profile.Avatar,
			Socials:     socials,
			Educations:  info.Profile.Education,
			Experiences: info.Profile.Experience,
			Portfolios:  portfolios,
		},
		Publications: Publications{
			JournalPaper:                    localizePublications(info.JournalPaper),
			RefereedInternationalConference: localizePublications(info.RefereedInternationalConference),
			InternationalConference:         localizePublications(info.InternationalConference),
			DomesticWorkshop:                localizePublications(info.DomesticWorkshop),
		},
		Changelog: entries,
		Site: LocalizedSite{
			Title:       pick(info.Site.TitleJA, info.Site.TitleEN),
			Description: pick(info.Site.DescriptionJA, info.Site.DescriptionEN),
			Copyright:   info.Site.Copyright,
		},
	}
}

func localizePublications(publications []Publication) []LocalizedPublication {
	out := make([]LocalizedPublication, 0, len(publications))
	for _, publication := range publications {
		localized := LocalizedPublication{
			ID:        publication.ID,
			Type:      publication.Type,
			Locale:    publication.Locale,
			Title:     publication.Title,
			Author:    publication.AuthorNames(),
			Abstract:  publication.Abstract,
			URL:       publication.URL,
			DOI:       publication.DOI,
			Container: publication.ContainerName(),
			Year:      publication.Issued.Year(),
			Month:     publication.Issued.Month(),
		}
		if publication.Custom != nil {
			localized.Award = publication.Custom.Award
		}
		out = append(out, localized)
	}
	return out
}
