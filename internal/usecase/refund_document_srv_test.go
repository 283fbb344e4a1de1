package usecase

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"rental-booking/internal/dto/request"
	"rental-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestDocumentUploadAndVerify(t *testing.T) {
	f := newRefundFixture(t, nil)
	ctx := context.Background()
	id := refundID(t, f.request(t, "100", ""))

	doc, err := f.svc.RefundDocument.Upload(ctx, f.guest, id, UploadDocumentInput{
		FileName:     "../../receipt scan.png",
		DocumentType: "receipt",
		Content:      bytes.NewReader(pngHeader),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", doc.ContentType)
	assert.False(t, strings.Contains(doc.FileName, "/"))

	docID := uuid.MustParse(doc.ID)
	link, err := f.svc.RefundDocument.Download(ctx, f.host, id, docID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.URL, "https://files.test/refunds/"+id.String()+"/"))

	_, err = f.svc.RefundDocument.Verify(ctx, f.guest, id, docID)
	assert.True(t, apperror.Is(err, apperror.KindPermission))

	first, err := f.svc.RefundDocument.Verify(ctx, f.host, id, docID)
	require.NoError(t, err)
	assert.True(t, first.IsVerified)

	again, err := f.svc.RefundDocument.Verify(ctx, f.host, id, docID)
	require.NoError(t, err)
	assert.Equal(t, first.VerifiedAt, again.VerifiedAt)

	err = f.svc.RefundDocument.Delete(ctx, f.guest, id, docID)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestDocumentUploadRejectsUnsupportedContent(t *testing.T) {
	f := newRefundFixture(t, nil)
	id := refundID(t, f.request(t, "100", ""))

	_, err := f.svc.RefundDocument.Upload(context.Background(), f.guest, id, UploadDocumentInput{
		FileName: "notes.pdf",
		Content:  strings.NewReader("just some text pretending to be a pdf"),
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.RefundDocument.Upload(context.Background(), f.host, id, UploadDocumentInput{
		FileName: "r.png",
		Content:  bytes.NewReader(pngHeader),
	})
	assert.True(t, apperror.Is(err, apperror.KindPermission), "managers do not upload evidence")
}

func TestDocumentUploadClosedOnTerminalRefund(t *testing.T) {
	f := newRefundFixture(t, nil)
	ctx := context.Background()
	id := refundID(t, f.request(t, "100", ""))

	_, err := f.svc.Refund.Withdraw(ctx, f.guest, id, &request.WithdrawInput{})
	require.NoError(t, err)

	_, err = f.svc.RefundDocument.Upload(ctx, f.guest, id, UploadDocumentInput{
		FileName: "r.png",
		Content:  bytes.NewReader(pngHeader),
	})
	assert.True(t, apperror.Is(err, apperror.KindInvalidStateTransition))
}

func TestDocumentUnverifiedCanBeDeletedByUploader(t *testing.T) {
	f := newRefundFixture(t, nil)
	ctx := context.Background()
	id := refundID(t, f.request(t, "100", ""))

	doc, err := f.svc.RefundDocument.Upload(ctx, f.guest, id, UploadDocumentInput{
		FileName: "r.png",
		Content:  bytes.NewReader(pngHeader),
	})
	require.NoError(t, err)
	docID := uuid.MustParse(doc.ID)

	require.NoError(t, f.svc.RefundDocument.Delete(ctx, f.guest, id, docID))

	docs, err := f.svc.RefundDocument.List(ctx, f.guest, id)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Empty(t, f.files.objects)
}
