package anilist

// mediaFields is the selection set shared by every media query
const mediaFields = `
        id
        title {
          romaji
          english
          native
        }
        description
        coverImage {
          large
          medium
          color
        }
        bannerImage
        genres
        averageScore
        episodes
        duration
        status
        season
        seasonYear
        format
        studios {
          nodes {
            id
            name
          }
        }
        startDate {
          year
          month
          day
        }
        endDate {
          year
          month
          day
        }
        trailer {
          id
          site
        }
        tags {
          id
          name
          description
          rank
          isMediaSpoiler
          isGeneralSpoiler
        }`

const pageInfoFields = `
      pageInfo {
        total
        currentPage
        lastPage
        hasNextPage
        perPage
      }`

const searchAnimeQuery = `
  query ($page: Int, $perPage: Int, $search: String, $genre_in: [String], $year: Int, $season: MediaSeason, $format: MediaFormat, $status: MediaStatus, $sort: [MediaSort]) {
    Page(page: $page, perPage: $perPage) {` + pageInfoFields + `
      media(type: ANIME, search: $search, genre_in: $genre_in, seasonYear: $year, season: $season, format: $format, status: $status, sort: $sort) {` + mediaFields + `
      }
    }
  }
`

const trendingAnimeQuery = `
  query ($page: Int, $perPage: Int) {
    Page(page: $page, perPage: $perPage) {` + pageInfoFields + `
      media(type: ANIME, sort: TRENDING_DESC) {` + mediaFields + `
      }
    }
  }
`

const animeByIDQuery = `
  query ($id: Int) {
    Media(id: $id, type: ANIME) {` + mediaFields + `
    }
  }
`
