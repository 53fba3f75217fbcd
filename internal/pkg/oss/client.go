package oss

import (
	"bytes"
	"fmt"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/kidcare_server/config"
)

type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// InvoiceObjectKey 发票 PDF 的存储路径
func InvoiceObjectKey(userID int64, invoiceNumber string, issuedAt time.Time) string {
	return fmt.Sprintf("invoices/%d/%s/%s.pdf", userID, issuedAt.Format("200601"), invoiceNumber)
}

// UploadInvoicePDF 归档发票 PDF，返回带签名的下载链接
func (c *Client) UploadInvoicePDF(userID int64, invoiceNumber string, issuedAt time.Time, data []byte) (string, error) {
	objectKey := InvoiceObjectKey(userID, invoiceNumber, issuedAt)

	err := c.bucket.PutObject(objectKey, bytes.NewReader(data),
		oss.ContentType("application/pdf"),
		oss.ContentDisposition(fmt.Sprintf("attachment; filename=%q", invoiceNumber+".pdf")),
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload invoice: %w", err)
	}

	// 发票含个人信息，不走公开地址
	return c.GetSignedURL(objectKey, 7*24*3600)
}

// Delete 删除文件
func (c *Client) Delete(objectKey string) error {
	err := c.bucket.DeleteObject(objectKey)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.client.Config.Endpoint, objectKey)
}

// GetSignedURL 生成带签名的临时访问URL（默认1小时有效）
func (c *Client) GetSignedURL(objectKey string, expireSeconds ...int64) (string, error) {
	expire := int64(3600)
	if len(expireSeconds) > 0 && expireSeconds[0] > 0 {
		expire = expireSeconds[0]
	}

	signedURL, err := c.bucket.SignURL(objectKey, oss.HTTPGet, expire)
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}

	return signedURL, nil
}
