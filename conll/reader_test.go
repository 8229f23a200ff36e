package conll

import (
	"errors"
	"testing"

	"github.com/peter-xbs/FSM/types"
	"github.com/stretchr/testify/require"
)

const twoSentences = `# 诊断高血压，给予阿司匹林和胰岛素
1	诊断	act	0	HED	_	_
2	高血压	dis	1	VOB	T1	_
3	给予	act	0	HED	_	_
4	阿司匹林	med	3	VOB	T2	_
5	和	c	6	LAD	_	_
6	胰岛素	med	4	COO	T3	_

1	出现	act	0	HED	_	_
2	皮疹	sym	1	VOB	T4	symptom
`

func TestParseDocument(t *testing.T) {
	sentences, err := ParseDocument(twoSentences)
	require.NoError(t, err)
	require.Len(t, sentences, 2)

	first := sentences[0]
	require.Equal(t, 0, first.Index)
	require.Equal(t, "诊断高血压给予阿司匹林和胰岛素", first.Text())

	root := first.Tree.Root
	require.True(t, root.IsRoot())
	require.Equal(t, []string{"诊断", "给予"}, types.Words(root.RightChildren))
	require.Empty(t, root.LeftChildren)

	give, ok := first.Tree.Token(3)
	require.True(t, ok)
	require.Equal(t, []string{"阿司匹林"}, types.Words(give.RightChildren))

	aspirin, _ := first.Tree.Token(4)
	require.Equal(t, []string{"T3"}, aspirin.CoordinationSiblings)

	insulin, _ := first.Tree.Token(6)
	require.Equal(t, []string{"和"}, types.Words(insulin.LeftChildren))
	require.Empty(t, insulin.CoordinationSiblings)

	require.Equal(t, types.Entities{
		"T1": {ID: "T1", Text: "高血压", Label: "dis"},
		"T2": {ID: "T2", Text: "阿司匹林", Label: "med"},
		"T3": {ID: "T3", Text: "胰岛素", Label: "med"},
	}, first.Entities)

	second := sentences[1]
	require.Equal(t, 1, second.Index)
	require.Equal(t, types.Entities{"T4": {ID: "T4", Text: "皮疹", Label: "symptom"}}, second.Entities)
}

func TestParseDocumentWhitespaceColumns(t *testing.T) {
	sentences, err := ParseDocument("1 诊断 act 0 HED\n2 高血压 dis 1 VOB T1\n")
	require.NoError(t, err)
	require.Len(t, sentences, 1)
	require.Equal(t, "dis", sentences[0].Entities["T1"].Label)
}

func TestMultiTokenMention(t *testing.T) {
	sent, err := ParseSentence([]string{
		"1\t给予\tact\t0\tHED\t_\t_",
		"2\t阿司匹林\tmed\t1\tVOB\tT1\tmed",
		"3\t肠溶片\tmed\t2\tATT\tT1\tmed",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, "阿司匹林肠溶片", sent.Entities["T1"].Text)
}

func TestTransitiveCoordination(t *testing.T) {
	sent, err := ParseSentence([]string{
		"1\t给予\tact\t0\tHED\t_\t_",
		"2\tA\tmed\t1\tVOB\tT1\t_",
		"3\tB\tmed\t2\tCOO\tT2\t_",
		"4\tC\tmed\t3\tcoo\tT3\t_",
	}, 1)
	require.NoError(t, err)
	a, _ := sent.Tree.Token(2)
	require.Equal(t, []string{"T2", "T3"}, a.CoordinationSiblings)
}

func TestParseErrors(t *testing.T) {
	var parseErr *ParseError

	_, err := ParseDocument("1\t诊断\tact\n")
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, 1, parseErr.Line)

	_, err = ParseDocument("1\t诊断\tact\t0\tHED\n\n1\t给予\tact\t9\tHED\n")
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, 3, parseErr.Line)

	_, err = ParseDocument("1\t诊断\tact\t0\tHED\n3\t给予\tact\t1\tCOO\n")
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, 2, parseErr.Line)

	_, err = ParseDocument("1\t诊断\tact\tx\tHED\n")
	require.True(t, errors.As(err, &parseErr))
}

func TestCyclicTree(t *testing.T) {
	_, err := ParseDocument("1\tA\tn\t2\tX\n2\tB\tn\t1\tX\n")
	require.ErrorIs(t, err, ErrCyclicTree)

	_, err = ParseDocument("1\tA\tn\t1\tX\n")
	require.ErrorIs(t, err, ErrCyclicTree)
}

func TestEmptyDocument(t *testing.T) {
	sentences, err := ParseDocument("\n# only comments\n\n")
	require.NoError(t, err)
	require.Empty(t, sentences)
}
