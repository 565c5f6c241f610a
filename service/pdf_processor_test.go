package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortByPage(t *testing.T) {
	names := []string{
		"doc_10_Im0.png",
		"doc_2_Im1.jpg",
		"notes.txt",
		"doc_1_Im3.png",
		"doc_2_Im0.jpg",
		"doc_11_Im0.png",
	}
	sortByPage(names, "doc")

	assert.Equal(t, []string{
		"doc_1_Im3.png",
		"doc_2_Im0.jpg",
		"doc_2_Im1.jpg",
		"doc_10_Im0.png",
		"doc_11_Im0.png",
		"notes.txt",
	}, names)
}
