package admin

import (
	"errors"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrTheaterConflict  = errors.New("theater already exists")
	ErrShowtimeConflict = errors.New("theater already has a showtime at that time")
	ErrMovieOrTheater   = errors.New("movie or theater does not exist")
)
